package codec

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/disintegration/imaging"

	"github.com/hardenmedia/mediaharden/pkg/decoded"
	"github.com/hardenmedia/mediaharden/pkg/mediaerr"
	"github.com/hardenmedia/mediaharden/pkg/mediakind"
)

const svgCanvasSize = 256

var (
	scriptLikeTags = map[string]bool{"script": true, "foreignobject": true, "iframe": true, "object": true, "embed": true}
)

// DecodeSVG decodes as UTF-8 or fails, sanitizes the tree with
// golang.org/x/net/html (stripping <script>, event-handler attributes,
// and any href/xlink:href reference to an external resource), rasterizes
// the surviving shape primitives onto a fixed 256x256 canvas, checks that
// the canvas re-encodes as PNG, and returns the canvas pixels. Shapes are
// painted in the document's own user units: the root width, height and
// viewBox are not read and no scaling is applied, so anything outside
// 0..256 on either axis is clipped. It never resolves or fetches a
// referenced resource.
func DecodeSVG(data []byte) (*decoded.Decoded, error) {
	if !utf8.Valid(data) {
		return nil, mediaerr.New(mediaerr.StructuralParseFailure, "svg: input is not valid UTF-8")
	}

	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, mediaerr.Wrap(mediaerr.StructuralParseFailure, "svg", "could not parse markup", err)
	}

	sanitize(doc)

	shapes := collectShapes(doc)

	// Rasterize in SVG user units straight onto the 256x256 canvas. The
	// canvas already fits the target size, so imaging.Fit returns an
	// unscaled copy of it rather than resizing anything.
	native := image.NewRGBA(image.Rect(0, 0, svgCanvasSize, svgCanvasSize))
	draw := newRasterCanvas(native)
	for _, s := range shapes {
		s.paint(draw)
	}

	fitted := imaging.Fit(native, svgCanvasSize, svgCanvasSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := png.Encode(&buf, fitted); err != nil {
		return nil, mediaerr.Wrap(mediaerr.StructuralParseFailure, "svg", "could not re-encode as PNG", err)
	}

	rgba := toRGBA(fitted)
	return &decoded.Decoded{
		Kind: mediakind.Svg,
		Image: &decoded.ImagePayload{
			Image:  rgba,
			Width:  rgba.Bounds().Dx(),
			Height: rgba.Bounds().Dy(),
		},
	}, nil
}

// sanitize walks the tree in place, detaching scripting elements and
// stripping event-handler and external-reference attributes from
// whatever remains. It never follows a reference; it only deletes.
func sanitize(n *html.Node) {
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			if c.Type == html.ElementNode && scriptLikeTags[strings.ToLower(c.Data)] {
				n.RemoveChild(c)
				c = next
				continue
			}
			if c.Type == html.ElementNode {
				stripUnsafeAttrs(c)
				walk(c)
			}
			c = next
		}
	}
	walk(n)
}

func stripUnsafeAttrs(n *html.Node) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		key := strings.ToLower(a.Key)
		switch {
		case strings.HasPrefix(key, "on"):
			continue
		case key == "href" || key == "xlink:href":
			if !strings.HasPrefix(a.Val, "#") {
				continue // external or scheme-bearing reference, drop
			}
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

// shape is the minimal rasterizable primitive set this hardened
// renderer supports: rect, circle, and path (line and cubic-curve
// commands only). Anything else is left out of the shape list
// entirely, so unsupported markup degrades to a blank canvas of the
// right size rather than failing the whole decode.
type shape interface {
	paint(c *rasterCanvas)
}

type rectShape struct{ x, y, w, h float64 }
type circleShape struct{ cx, cy, r float64 }
type pathShape struct{ subpaths [][]pathPoint }

type pathPoint struct{ x, y float64 }

func (s rectShape) paint(c *rasterCanvas) {
	c.fillRect(int(s.x), int(s.y), int(s.x+s.w), int(s.y+s.h))
}

func (s circleShape) paint(c *rasterCanvas) {
	c.fillCircle(int(s.cx), int(s.cy), int(s.r))
}

func (s pathShape) paint(c *rasterCanvas) {
	for _, sub := range s.subpaths {
		c.fillPolygon(sub)
	}
}

func collectShapes(n *html.Node) []shape {
	var out []shape
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "rect":
				out = append(out, rectShape{
					x: attrFloat(n, "x"), y: attrFloat(n, "y"),
					w: attrFloat(n, "width"), h: attrFloat(n, "height"),
				})
			case "circle":
				out = append(out, circleShape{
					cx: attrFloat(n, "cx"), cy: attrFloat(n, "cy"), r: attrFloat(n, "r"),
				})
			case "path":
				if d := attrString(n, "d"); d != "" {
					out = append(out, pathShape{subpaths: parsePathData(d)})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func attrString(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

// parsePathData supports the M/m (moveto), L/l (lineto), C/c (cubic
// curve, flattened to line segments), and Z/z (close) commands, the
// only primitives this adapter promises. tokenizePathData drops any other
// command letter, and the numbers that followed it are skipped here until
// the next supported command, which carries on the current subpath. So a
// path mixing supported and unsupported commands still contributes the
// segments this renderer understands rather than failing the whole
// decode.
func parsePathData(d string) [][]pathPoint {
	toks := tokenizePathData(d)
	var subpaths [][]pathPoint
	var cur []pathPoint
	var x, y, startX, startY float64
	i := 0
	nextNum := func() (float64, bool) {
		if i >= len(toks) {
			return 0, false
		}
		v, err := strconv.ParseFloat(toks[i], 64)
		if err != nil {
			return 0, false
		}
		i++
		return v, true
	}

	for i < len(toks) {
		cmd := toks[i]
		if len(cmd) != 1 || !isPathCommandLetter(cmd[0]) {
			i++
			continue
		}
		i++
		rel := cmd >= "a" && cmd <= "z"
		switch strings.ToUpper(cmd) {
		case "M":
			nx, ok1 := nextNum()
			ny, ok2 := nextNum()
			if !ok1 || !ok2 {
				return subpaths
			}
			if len(cur) > 0 {
				subpaths = append(subpaths, cur)
			}
			if rel {
				nx, ny = x+nx, y+ny
			}
			x, y, startX, startY = nx, ny, nx, ny
			cur = []pathPoint{{x, y}}
		case "L":
			nx, ok1 := nextNum()
			ny, ok2 := nextNum()
			if !ok1 || !ok2 {
				return appendSubpath(subpaths, cur)
			}
			if rel {
				nx, ny = x+nx, y+ny
			}
			x, y = nx, ny
			cur = append(cur, pathPoint{x, y})
		case "C":
			x1, ok1 := nextNum()
			y1, ok2 := nextNum()
			x2, ok3 := nextNum()
			y2, ok4 := nextNum()
			ex, ok5 := nextNum()
			ey, ok6 := nextNum()
			if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 {
				return appendSubpath(subpaths, cur)
			}
			if rel {
				x1, y1 = x+x1, y+y1
				x2, y2 = x+x2, y+y2
				ex, ey = x+ex, y+ey
			}
			cur = append(cur, flattenCubic(x, y, x1, y1, x2, y2, ex, ey)...)
			x, y = ex, ey
		case "Z":
			x, y = startX, startY
			if len(cur) > 0 {
				cur = append(cur, pathPoint{startX, startY})
			}
		default:
			return appendSubpath(subpaths, cur)
		}
	}
	return appendSubpath(subpaths, cur)
}

func appendSubpath(subpaths [][]pathPoint, cur []pathPoint) [][]pathPoint {
	if len(cur) > 0 {
		return append(subpaths, cur)
	}
	return subpaths
}

func isPathCommandLetter(b byte) bool {
	switch b {
	case 'M', 'm', 'L', 'l', 'C', 'c', 'Z', 'z':
		return true
	default:
		return false
	}
}

// flattenCubic samples a cubic Bezier at a fixed step count, enough for
// the small fixed canvas this adapter rasterizes onto.
func flattenCubic(x0, y0, x1, y1, x2, y2, x3, y3 float64) []pathPoint {
	const steps = 16
	pts := make([]pathPoint, 0, steps)
	for s := 1; s <= steps; s++ {
		t := float64(s) / float64(steps)
		mt := 1 - t
		px := mt*mt*mt*x0 + 3*mt*mt*t*x1 + 3*mt*t*t*x2 + t*t*t*x3
		py := mt*mt*mt*y0 + 3*mt*mt*t*y1 + 3*mt*t*t*y2 + t*t*t*y3
		pts = append(pts, pathPoint{px, py})
	}
	return pts
}

// tokenizePathData splits SVG path data into command letters and
// numeric tokens, tolerating the compact syntax where numbers run
// together without separating whitespace (e.g. "M10,10-5.5").
func tokenizePathData(d string) []string {
	var toks []string
	i := 0
	for i < len(d) {
		c := d[i]
		switch {
		case c == ',' || c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isPathCommandLetter(c):
			toks = append(toks, string(c))
			i++
		case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
			start := i
			i++
			for i < len(d) && (d[i] == '.' || (d[i] >= '0' && d[i] <= '9')) {
				i++
			}
			if i < len(d) && (d[i] == 'e' || d[i] == 'E') {
				i++
				if i < len(d) && (d[i] == '+' || d[i] == '-') {
					i++
				}
				for i < len(d) && d[i] >= '0' && d[i] <= '9' {
					i++
				}
			}
			toks = append(toks, d[start:i])
		default:
			i++
		}
	}
	return toks
}

func attrFloat(n *html.Node, key string) float64 {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			v, err := strconv.ParseFloat(strings.TrimSpace(a.Val), 64)
			if err == nil {
				return v
			}
		}
	}
	return 0
}

// rasterCanvas is a minimal scanline filler; it exists only so shape
// implementations stay free of direct image.RGBA bounds-checking.
type rasterCanvas struct {
	img *image.RGBA
}

func newRasterCanvas(img *image.RGBA) *rasterCanvas {
	return &rasterCanvas{img: img}
}

func (c *rasterCanvas) fillRect(x0, y0, x1, y1 int) {
	b := c.img.Bounds()
	for y := max(y0, b.Min.Y); y < min(y1, b.Max.Y); y++ {
		for x := max(x0, b.Min.X); x < min(x1, b.Max.X); x++ {
			c.img.Set(x, y, color.Black)
		}
	}
}

func (c *rasterCanvas) fillCircle(cx, cy, r int) {
	b := c.img.Bounds()
	for y := max(cy-r, b.Min.Y); y < min(cy+r, b.Max.Y); y++ {
		for x := max(cx-r, b.Min.X); x < min(cx+r, b.Max.X); x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				c.img.Set(x, y, color.Black)
			}
		}
	}
}

// fillPolygon fills the polygon described by pts using an even-odd
// scanline rule, the same row-at-a-time approach fillRect/fillCircle
// use rather than a general-purpose rasterizer library.
func (c *rasterCanvas) fillPolygon(pts []pathPoint) {
	if len(pts) < 3 {
		return
	}
	b := c.img.Bounds()
	minY, maxY := pts[0].y, pts[0].y
	for _, p := range pts {
		minY = minF(minY, p.y)
		maxY = maxF(maxY, p.y)
	}
	y0 := maxF(float64(b.Min.Y), minY)
	y1 := minF(float64(b.Max.Y), maxY+1)
	for y := int(y0); float64(y) < y1; y++ {
		var xs []float64
		fy := float64(y) + 0.5
		n := len(pts)
		for i := 0; i < n; i++ {
			a, bPt := pts[i], pts[(i+1)%n]
			if (a.y <= fy && bPt.y > fy) || (bPt.y <= fy && a.y > fy) {
				t := (fy - a.y) / (bPt.y - a.y)
				xs = append(xs, a.x+t*(bPt.x-a.x))
			}
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			x0 := maxF(float64(b.Min.X), xs[i])
			x1 := minF(float64(b.Max.X), xs[i+1])
			for x := int(x0); float64(x) < x1; x++ {
				c.img.Set(x, y, color.Black)
			}
		}
	}
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
