package models

// Metadata holds the six SEO fields extracted from one page.
// Every field defaults to the empty string when its element is absent.
type Metadata struct {
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	OGTitle         string `json:"og_title"`
	OGDescription   string `json:"og_description"`
	PageTitle       string `json:"page_title"`
	PageDescription string `json:"page_description"`
}

// ExtractionResult is the outcome of processing one URL.
//
// Exactly one of Metadata and Error is set. The embedded pointer keeps the
// metadata keys out of the JSON encoding of a failed result.
type ExtractionResult struct {
	URL string `json:"url"`
	*Metadata
	Error string `json:"error,omitempty"`
}

// NewSuccess builds a result for a page that was fetched and parsed.
func NewSuccess(url string, md Metadata) ExtractionResult {
	return ExtractionResult{URL: url, Metadata: &md}
}

// NewFailure builds a result carrying only the URL and the failure message.
func NewFailure(url string, err error) ExtractionResult {
	msg := "unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return ExtractionResult{URL: url, Error: msg}
}

// Succeeded reports whether the result carries metadata.
func (r ExtractionResult) Succeeded() bool {
	return r.Error == "" && r.Metadata != nil
}

// Fields returns the result as column name → value, omitting absent columns.
func (r ExtractionResult) Fields() map[string]string {
	if !r.Succeeded() {
		return map[string]string{
			ColumnURL:   r.URL,
			ColumnError: r.Error,
		}
	}
	return map[string]string{
		ColumnURL:             r.URL,
		ColumnMetaTitle:       r.MetaTitle,
		ColumnMetaDescription: r.MetaDescription,
		ColumnOGTitle:         r.OGTitle,
		ColumnOGDescription:   r.OGDescription,
		ColumnPageTitle:       r.PageTitle,
		ColumnPageDescription: r.PageDescription,
	}
}

// Column names shared by JSON, the result table and spreadsheets.
const (
	ColumnURL             = "url"
	ColumnMetaTitle       = "meta_title"
	ColumnMetaDescription = "meta_description"
	ColumnOGTitle         = "og_title"
	ColumnOGDescription   = "og_description"
	ColumnPageTitle       = "page_title"
	ColumnPageDescription = "page_description"
	ColumnError           = "error"
)

// Columns lists every result column in output order.
var Columns = []string{
	ColumnURL,
	ColumnMetaTitle,
	ColumnMetaDescription,
	ColumnOGTitle,
	ColumnOGDescription,
	ColumnPageTitle,
	ColumnPageDescription,
	ColumnError,
}
