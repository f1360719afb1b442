package pdfdoc

import (
	"io"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/pkg/errors"

	"pdftriage/internal/contentstream"
	domain "pdftriage/internal/model"
)

// Page is one page of a Document.
type Page struct {
	ctx *model.Context
	nr  int

	images map[int]imageEntry // by object number, filled by Images
}

type imageEntry struct {
	name string
	sd   *types.StreamDict
}

var _ domain.Page = (*Page)(nil)

func (p *Page) Number() int { return p.nr }

// Drawings parses the page content stream, following form XObjects, into
// painted paths.
func (p *Page) Drawings() ([]domain.Path, error) {
	r, err := pdfcpu.ExtractPageContent(p.ctx, p.nr)
	if err != nil {
		return nil, errors.Wrapf(err, "page %d: content", p.nr)
	}
	if r == nil {
		return nil, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "page %d: read content", p.nr)
	}

	ops, err := contentstream.Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "page %d", p.nr)
	}

	res, err := p.resources()
	if err != nil {
		return nil, err
	}
	return BuildPaths(ops, p.formResolver(res, map[int]bool{})), nil
}

// Images returns the page's image directory: every image XObject reachable
// from the page resources, including those used inside form XObjects.
// Entries are ordered by resource name and unique by object number.
func (p *Page) Images() ([]domain.ImageRef, error) {
	res, err := p.resources()
	if err != nil {
		return nil, err
	}
	p.images = map[int]imageEntry{}
	var refs []domain.ImageRef
	if err := p.collectImages(res, map[int]bool{}, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}

// ResolveImage extracts the encoded bytes of an image returned by Images.
func (p *Page) ResolveImage(ref domain.ImageRef) (*domain.RawImage, error) {
	entry, ok := p.images[ref.ObjNr]
	if !ok {
		return nil, errors.Errorf("page %d: unknown image %s (obj %d)", p.nr, ref.Name, ref.ObjNr)
	}

	img, err := pdfcpu.ExtractImage(p.ctx, entry.sd, false, entry.name, ref.ObjNr, false)
	if err != nil {
		return nil, errors.Wrapf(err, "page %d: extract image %s (obj %d)", p.nr, ref.Name, ref.ObjNr)
	}
	if img == nil {
		return nil, errors.Errorf("page %d: unsupported image %s (obj %d)", p.nr, ref.Name, ref.ObjNr)
	}

	data, err := io.ReadAll(img)
	if err != nil {
		return nil, errors.Wrapf(err, "page %d: read image %s (obj %d)", p.nr, ref.Name, ref.ObjNr)
	}

	return &domain.RawImage{
		Ref:        ref,
		Data:       data,
		Format:     img.FileType,
		Width:      img.Width,
		Height:     img.Height,
		ColorSpace: img.Cs,
	}, nil
}

func (p *Page) resources() (types.Dict, error) {
	pageDict, _, _, err := p.ctx.PageDict(p.nr, true)
	if err != nil {
		return nil, errors.Wrapf(err, "page %d: page dict", p.nr)
	}
	if pageDict == nil {
		return nil, errors.Errorf("page %d: missing page dict", p.nr)
	}
	obj, found := pageDict.Find("Resources")
	if !found || obj == nil {
		return nil, nil
	}
	res, err := p.ctx.DereferenceDict(obj)
	if err != nil {
		return nil, errors.Wrapf(err, "page %d: resources", p.nr)
	}
	return res, nil
}

type xobject struct {
	name  string
	objNr int
	sd    *types.StreamDict
}

// xobjects lists the XObjects of a resource dict sorted by name.
func (p *Page) xobjects(res types.Dict) ([]xobject, error) {
	if res == nil {
		return nil, nil
	}
	obj, found := res.Find("XObject")
	if !found || obj == nil {
		return nil, nil
	}
	xDict, err := p.ctx.DereferenceDict(obj)
	if err != nil {
		return nil, errors.Wrapf(err, "page %d: XObject dict", p.nr)
	}

	names := make([]string, 0, len(xDict))
	for name := range xDict {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []xobject
	for _, name := range names {
		ir, ok := xDict[name].(types.IndirectRef)
		if !ok {
			continue
		}
		sd, err := p.ctx.DereferenceXObjectDict(ir)
		if err != nil || sd == nil {
			continue
		}
		out = append(out, xobject{name: name, objNr: ir.ObjectNumber.Value(), sd: sd})
	}
	return out, nil
}

func (p *Page) collectImages(res types.Dict, visitedForms map[int]bool, refs *[]domain.ImageRef) error {
	xobjs, err := p.xobjects(res)
	if err != nil {
		return err
	}
	for _, x := range xobjs {
		if x.sd.Image() {
			if _, seen := p.images[x.objNr]; seen {
				continue
			}
			p.images[x.objNr] = imageEntry{name: x.name, sd: x.sd}
			*refs = append(*refs, domain.ImageRef{Name: x.name, ObjNr: x.objNr})
			continue
		}
		if !isForm(x.sd) || visitedForms[x.objNr] {
			continue
		}
		visitedForms[x.objNr] = true
		formRes, err := p.formResources(x.sd)
		if err != nil {
			return err
		}
		if err := p.collectImages(formRes, visitedForms, refs); err != nil {
			return err
		}
	}
	return nil
}

func (p *Page) formResolver(res types.Dict, active map[int]bool) FormResolver {
	return func(name string) ([]contentstream.Operation, FormResolver, bool) {
		xobjs, err := p.xobjects(res)
		if err != nil {
			return nil, nil, false
		}
		for _, x := range xobjs {
			if x.name != name || !isForm(x.sd) || active[x.objNr] {
				continue
			}
			if err := x.sd.Decode(); err != nil {
				return nil, nil, false
			}
			ops, err := contentstream.Parse(x.sd.Content)
			if err != nil {
				return nil, nil, false
			}
			formRes, err := p.formResources(x.sd)
			if err != nil {
				return nil, nil, false
			}
			nested := make(map[int]bool, len(active)+1)
			for k := range active {
				nested[k] = true
			}
			nested[x.objNr] = true
			return ops, p.formResolver(formRes, nested), true
		}
		return nil, nil, false
	}
}

func (p *Page) formResources(sd *types.StreamDict) (types.Dict, error) {
	obj, found := sd.Find("Resources")
	if !found || obj == nil {
		return nil, nil
	}
	res, err := p.ctx.DereferenceDict(obj)
	if err != nil {
		return nil, errors.Wrapf(err, "page %d: form resources", p.nr)
	}
	return res, nil
}

func isForm(sd *types.StreamDict) bool {
	st := sd.NameEntry("Subtype")
	return st != nil && *st == "Form"
}
