//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

// NotesDocument is the Markdown notes artifact of a client folder.
// Missing is set when the artifact does not exist yet; the boundary layer
// renders a placeholder instead of an error in that case.
type NotesDocument struct {
	Folder  string `json:"folder"`
	Path    string `json:"path"`
	Content string `json:"content"`
	Missing bool   `json:"missing"`
}

// SaveNotesRequest represents parameters to overwrite a folder's notes.
type SaveNotesRequest struct {
	Content string `json:"content"`
}
