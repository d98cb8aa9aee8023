// ABOUTME: Request DTOs for extraction, conversion and capture endpoints
// ABOUTME: Huma validates these through their struct tags

package requests

// SubmitExtractionRequest starts a new extraction job
type SubmitExtractionRequest struct {
	URL    string `json:"url" minLength:"1" doc:"Page URL to extract" example:"https://example.com/article"`
	Title  string `json:"title,omitempty" doc:"Page title; defaults to 'Untitled Extraction'"`
	Source string `json:"source,omitempty" enum:"tiptap,standard" doc:"How the page content was captured"`
}

// SelectExtractionRequest marks a job as the selected one
type SelectExtractionRequest struct {
	// ID is the job to select; empty clears the selection
	ID string `json:"id" doc:"Job id to select, empty to clear the selection"`
}

// ConvertRequest carries an HTML fragment to convert
type ConvertRequest struct {
	HTML string `json:"html" doc:"HTML fragment" example:"<h1>Title</h1><p>Body</p>"`
}

// CaptureRequest carries a whole page to capture
type CaptureRequest struct {
	URL  string `json:"url" minLength:"1" doc:"Address of the captured page"`
	HTML string `json:"html" minLength:"1" doc:"Full page HTML"`
	// Raw keeps tiptap content as editor HTML instead of Markdown
	Raw bool `json:"raw,omitempty" doc:"Return tiptap content as HTML instead of Markdown"`
}
