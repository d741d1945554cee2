// Package loader turns documents into plain text for the vector store.
//
// Plain text and Markdown files are read as-is. PDF text is extracted page by
// page with github.com/ledongthuc/pdf and Word documents are converted with
// docconv. Any other extension yields ErrUnsupportedFormat.
package loader
