package model

// ImageRef identifies one entry of a page's image directory.
type ImageRef struct {
	Name  string // resource name, e.g. "Im0"
	ObjNr int
}

// RawImage is a resolved image: its encoded bytes and the metadata the PDF
// library reports for it.
type RawImage struct {
	Ref        ImageRef
	Data       []byte
	Format     string // file type of Data: "jpg", "png", "tif", ...
	Width      int
	Height     int
	ColorSpace string
}

// Page is a read-only view on one page of a Document.
type Page interface {
	// Number is the 1-based page number.
	Number() int
	Drawings() ([]Path, error)
	Images() ([]ImageRef, error)
	ResolveImage(ref ImageRef) (*RawImage, error)
}

// Document is an opened PDF. The page count is fixed when it is opened.
type Document interface {
	Path() string
	PageCount() int
	// Page returns the page at the 0-based index.
	Page(index int) (Page, error)
	// WritePage writes the page at the 0-based index as a standalone
	// single-page PDF.
	WritePage(index int, outFile string) error
	Close() error
}

// Opener opens the document at path.
type Opener func(path string) (Document, error)
