package models

import "time"

// FileRecord represents one file stored in the workspace
type FileRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Filetype  string `json:"filetype"`
	Size      int64  `json:"size"`
	Timestamp int64  `json:"timestamp"`
}

// Created returns the upload time of the file
func (f FileRecord) Created() time.Time {
	return time.Unix(f.Timestamp, 0)
}

// PageCursor tracks the position in a paged listing
type PageCursor struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

// IsFinal reports whether the cursor points at the last page
func (c PageCursor) IsFinal() bool {
	return c.Page >= c.Pages
}

// Percent returns the share of pages fetched so far, rounded
func (c PageCursor) Percent() int {
	if c.Pages <= 0 {
		return 100
	}
	return (200*c.Page + c.Pages) / (2 * c.Pages)
}

// FilesPage is one page of the remote listing
type FilesPage struct {
	Files  []FileRecord
	Cursor PageCursor
}
