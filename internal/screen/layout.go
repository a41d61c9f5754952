package screen

import (
	"hubpanel/internal/compositor"
	"hubpanel/internal/epd"
	"hubpanel/internal/geom"
)

const (
	StatusHeight  = 24
	FooterHeight  = 20
	Padding       = 6
	ListRowHeight = 28
	TileSpacing   = 8
)

// Zones splits the panel into status bar, body and footer.
func Zones(bounds geom.Rect) geom.Zones {
	return geom.NewZones(bounds, StatusHeight, FooterHeight)
}

// body is the content zone minus padding.
func body(z geom.Zones) geom.Rect {
	return z.Content.Inset(Padding)
}

// drawTile paints a bordered tile with a title and a detail line.
func drawTile(c *compositor.Compositor, r geom.Rect, title, detail string) {
	c.StrokeRect(r, epd.Black)
	c.Text(r.X+Padding, r.Y+Padding, title, epd.FontTitle, epd.Black)
	if detail != "" {
		c.Text(r.X+Padding, r.Y+Padding+epd.FontTitle.LineHeight()+2, detail, epd.FontBody, epd.Black)
	}
}

// drawRow paints a list row with a label on the left and a value on the
// right.
func drawRow(c *compositor.Compositor, r geom.Rect, label, value string) {
	y := r.Y + (r.H-epd.FontBody.LineHeight())/2
	c.Text(r.X+Padding, y, label, epd.FontBody, epd.Black)
	if value != "" {
		w := epd.FontBody.TextWidth(value)
		c.Text(r.X+r.W-Padding-w, y, value, epd.FontBody, epd.Black)
	}
	c.Line(r.X, r.Y+r.H-1, r.X+r.W-1, r.Y+r.H-1, epd.Black)
}

// DrawFooter paints the key hint line.
func DrawFooter(c *compositor.Compositor, z geom.Zones, hint string) {
	c.FillRect(z.Footer, epd.White)
	c.Line(z.Footer.X, z.Footer.Y, z.Footer.X+z.Footer.W-1, z.Footer.Y, epd.Black)
	c.Text(z.Footer.X+Padding, z.Footer.Y+3, hint, epd.FontBody, epd.Black)
}
