// Package pptx writes minimal PowerPoint (OOXML) presentations: one blank
// slide per page, each carrying an editable title box and body text box.
// Only the parts PowerPoint requires to open the file are emitted.
package pptx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// Slide dimensions and text box geometry, in EMUs (914400 per inch).
// The 10" x 7.5" canvas and box placement mirror the reference deck
// layout: title at (0.5", 0.3") 9" x 0.8", body at (0.5", 1.3") 9" x 5.5".
const (
	emuPerInch = 914400

	slideWidth  = 10 * emuPerInch
	slideHeight = emuPerInch * 15 / 2

	titleX = emuPerInch / 2
	titleY = emuPerInch * 3 / 10
	titleW = 9 * emuPerInch
	titleH = emuPerInch * 4 / 5

	bodyX = emuPerInch / 2
	bodyY = emuPerInch * 13 / 10
	bodyW = 9 * emuPerInch
	bodyH = emuPerInch * 11 / 2
)

// Style controls run formatting. Sizes are in points, colors are RRGGBB.
type Style struct {
	TitleSizePt      int
	BodySizePt       int
	TitleColor       string
	BodyColor        string
	PlaceholderColor string
}

// DefaultStyle matches the reference deck: 28 pt dark blue-gray titles,
// 16 pt black body text, gray italic placeholders.
func DefaultStyle() Style {
	return Style{
		TitleSizePt:      28,
		BodySizePt:       16,
		TitleColor:       "2C3E50",
		BodyColor:        "000000",
		PlaceholderColor: "7F8C8D",
	}
}

// Slide is one page of the deck. Placeholder marks the body paragraphs as
// fill-in text to be styled gray italic.
type Slide struct {
	Title       string
	Paragraphs  []string
	Placeholder bool
}

// Deck is a presentation under construction.
type Deck struct {
	Style  Style
	slides []Slide
}

// NewDeck creates an empty deck with the default style.
func NewDeck() *Deck {
	return &Deck{Style: DefaultStyle()}
}

// AddSlide appends a slide to the deck.
func (d *Deck) AddSlide(s Slide) {
	d.slides = append(d.slides, s)
}

// SlideCount returns the number of slides added so far.
func (d *Deck) SlideCount() int {
	return len(d.slides)
}

// WriteFile writes the deck to path as a .pptx file.
func (d *Deck) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating pptx file: %w", err)
	}
	if err := d.Write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("closing pptx file: %w", err)
	}
	return nil
}

// Write emits the deck as a zip archive of OOXML parts.
func (d *Deck) Write(w io.Writer) error {
	if len(d.slides) == 0 {
		return fmt.Errorf("deck has no slides")
	}

	zw := zip.NewWriter(w)

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", d.contentTypes()},
		{"_rels/.rels", rootRels},
		{"ppt/presentation.xml", d.presentation()},
		{"ppt/_rels/presentation.xml.rels", d.presentationRels()},
		{"ppt/slideMasters/slideMaster1.xml", slideMaster},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", slideMasterRels},
		{"ppt/slideLayouts/slideLayout1.xml", slideLayout},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", slideLayoutRels},
		{"ppt/theme/theme1.xml", theme},
	}
	for i, s := range d.slides {
		n := i + 1
		parts = append(parts,
			struct{ name, content string }{fmt.Sprintf("ppt/slides/slide%d.xml", n), d.slideXML(s)},
			struct{ name, content string }{fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), slideRels},
		)
	}

	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("creating part %s: %w", p.name, err)
		}
		if _, err := io.WriteString(f, xml.Header+p.content); err != nil {
			return fmt.Errorf("writing part %s: %w", p.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing pptx: %w", err)
	}
	return nil
}

func (d *Deck) contentTypes() string {
	var b strings.Builder
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	b.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
	for i := range d.slides {
		fmt.Fprintf(&b, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i+1)
	}
	b.WriteString(`</Types>`)
	return b.String()
}

func (d *Deck) presentation() string {
	var b strings.Builder
	b.WriteString(`<p:presentation xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">`)
	b.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`)
	b.WriteString(`<p:sldIdLst>`)
	for i := range d.slides {
		fmt.Fprintf(&b, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, i+2)
	}
	b.WriteString(`</p:sldIdLst>`)
	fmt.Fprintf(&b, `<p:sldSz cx="%d" cy="%d"/><p:notesSz cx="%d" cy="%d"/>`, slideWidth, slideHeight, slideHeight, slideWidth)
	b.WriteString(`</p:presentation>`)
	return b.String()
}

func (d *Deck) presentationRels() string {
	var b strings.Builder
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="slideMasters/slideMaster1.xml"/>`)
	for i := range d.slides {
		fmt.Fprintf(&b, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>`, i+2, i+1)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

func (d *Deck) slideXML(s Slide) string {
	var b strings.Builder
	b.WriteString(`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">`)
	b.WriteString(`<p:cSld><p:spTree>`)
	b.WriteString(`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>`)
	b.WriteString(`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`)

	// Title box: bold, centered.
	titleRun := fmt.Sprintf(
		`<a:p><a:pPr algn="ctr"/><a:r><a:rPr lang="en-US" sz="%d" b="1" dirty="0"><a:solidFill><a:srgbClr val="%s"/></a:solidFill></a:rPr><a:t>%s</a:t></a:r></a:p>`,
		d.Style.TitleSizePt*100, d.Style.TitleColor, escape(s.Title),
	)
	b.WriteString(textBox(2, "Title", titleX, titleY, titleW, titleH, titleRun))

	// Body box: one drawing paragraph per text paragraph.
	bodyColor := d.Style.BodyColor
	italic := ""
	if s.Placeholder {
		bodyColor = d.Style.PlaceholderColor
		italic = ` i="1"`
	}
	var body strings.Builder
	for _, para := range s.Paragraphs {
		fmt.Fprintf(&body,
			`<a:p><a:pPr><a:lnSpc><a:spcPct val="120000"/></a:lnSpc><a:spcAft><a:spcPts val="1200"/></a:spcAft></a:pPr><a:r><a:rPr lang="en-US" sz="%d"%s dirty="0"><a:solidFill><a:srgbClr val="%s"/></a:solidFill></a:rPr><a:t>%s</a:t></a:r></a:p>`,
			d.Style.BodySizePt*100, italic, bodyColor, escape(para),
		)
	}
	if body.Len() == 0 {
		body.WriteString(`<a:p><a:endParaRPr lang="en-US"/></a:p>`)
	}
	b.WriteString(textBox(3, "Content", bodyX, bodyY, bodyW, bodyH, body.String()))

	b.WriteString(`</p:spTree></p:cSld>`)
	b.WriteString(`<p:clrMapOvr><a:overrideClrMapping bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/></p:clrMapOvr>`)
	b.WriteString(`</p:sld>`)
	return b.String()
}

// textBox emits a free-floating text shape with word wrap enabled.
func textBox(id int, name string, x, y, w, h int, paragraphs string) string {
	return fmt.Sprintf(
		`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`+
			`<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>`+
			`<p:txBody><a:bodyPr wrap="square" lIns="182880" tIns="182880" rIns="182880" bIns="182880"><a:normAutofit/></a:bodyPr><a:lstStyle/>%s</p:txBody></p:sp>`,
		id, name, x, y, w, h, paragraphs,
	)
}

func escape(s string) string {
	var b strings.Builder
	// EscapeText only fails on a failing writer; strings.Builder never does.
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
