package interchange

import (
	"encoding/json"
	"encoding/xml"
	"fmt"

	"github.com/kara-xyz/go-kara/world"
)

// The .world schema: grid dimensions as attributes, one point list per
// cell kind, and the character's cell plus a direction code. Direction
// codes are 0=north, 1=east, 2=south, 3=west. The JSON mirror uses the
// same shape with lowercase keys.
type xmlWorld struct {
	XMLName   xml.Name   `xml:"world"`
	Width     int        `xml:"width,attr"`
	Height    int        `xml:"height,attr"`
	Trees     []xmlPoint `xml:"trees>point"`
	Mushrooms []xmlPoint `xml:"mushrooms>point"`
	Clovers   []xmlPoint `xml:"clovers>point"`
	Kara      *xmlKara   `xml:"kara"`
}

type xmlPoint struct {
	X int `xml:"x,attr" json:"x"`
	Y int `xml:"y,attr" json:"y"`
}

type xmlKara struct {
	X         int `xml:"x,attr" json:"x"`
	Y         int `xml:"y,attr" json:"y"`
	Direction int `xml:"direction,attr" json:"direction"`
	Inventory int `xml:"inventory,attr" json:"inventory"`
}

type jsonWorld struct {
	Width     int        `json:"width"`
	Height    int        `json:"height"`
	Trees     []xmlPoint `json:"trees,omitempty"`
	Mushrooms []xmlPoint `json:"mushrooms,omitempty"`
	Clovers   []xmlPoint `json:"clovers,omitempty"`
	Kara      *xmlKara   `json:"kara,omitempty"`
}

// EncodeWorld serializes a world to the legacy XML format. Cells are
// listed in row-major order, so output is deterministic.
func EncodeWorld(w *world.World) ([]byte, error) {
	doc := worldDoc(w)
	out, err := xml.MarshalIndent(xmlWorld{
		Width:     doc.Width,
		Height:    doc.Height,
		Trees:     doc.Trees,
		Mushrooms: doc.Mushrooms,
		Clovers:   doc.Clovers,
		Kara:      doc.Kara,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("interchange: encode world: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

// EncodeWorldJSON serializes a world to the JSON mirror format.
func EncodeWorldJSON(w *world.World) ([]byte, error) {
	out, err := json.MarshalIndent(worldDoc(w), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("interchange: encode world: %w", err)
	}
	return append(out, '\n'), nil
}

func worldDoc(w *world.World) jsonWorld {
	doc := jsonWorld{Width: w.Width, Height: w.Height}
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			p := xmlPoint{X: x, Y: y}
			switch w.Cell(x, y) {
			case world.Tree:
				doc.Trees = append(doc.Trees, p)
			case world.Mushroom:
				doc.Mushrooms = append(doc.Mushrooms, p)
			case world.Clover:
				doc.Clovers = append(doc.Clovers, p)
			}
		}
	}
	if w.Character.Pos != world.OffGrid {
		doc.Kara = &xmlKara{
			X:         w.Character.Pos.X,
			Y:         w.Character.Pos.Y,
			Direction: int(w.Character.Dir),
			Inventory: w.Character.Inventory,
		}
	}
	return doc
}

// DecodeWorld parses the legacy XML world format. Missing point lists are
// treated as empty and a missing kara element leaves the character
// off-grid.
func DecodeWorld(data []byte) (*world.World, error) {
	var doc xmlWorld
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("interchange: parse world: %w", err)
	}
	return buildWorld(jsonWorld{
		Width:     doc.Width,
		Height:    doc.Height,
		Trees:     doc.Trees,
		Mushrooms: doc.Mushrooms,
		Clovers:   doc.Clovers,
		Kara:      doc.Kara,
	})
}

// DecodeWorldJSON parses the JSON mirror of the world format.
func DecodeWorldJSON(data []byte) (*world.World, error) {
	var doc jsonWorld
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("interchange: parse world: %w", err)
	}
	return buildWorld(doc)
}

// ReadWorld auto-detects the format and parses accordingly.
func ReadWorld(data []byte) (*world.World, error) {
	switch DetectFormat(data) {
	case FormatXML:
		return DecodeWorld(data)
	case FormatJSON:
		return DecodeWorldJSON(data)
	default:
		return nil, ErrUnknownFormat
	}
}

func buildWorld(doc jsonWorld) (*world.World, error) {
	if doc.Width <= 0 || doc.Height <= 0 {
		return nil, fmt.Errorf("%w: world dimensions %dx%d", ErrMalformed, doc.Width, doc.Height)
	}
	w := world.New(doc.Width, doc.Height)

	place := func(points []xmlPoint, c world.CellType) error {
		for _, p := range points {
			if !w.InBounds(p.X, p.Y) {
				return fmt.Errorf("%w: %v at (%d,%d) outside %dx%d grid",
					ErrMalformed, c, p.X, p.Y, doc.Width, doc.Height)
			}
			w = w.WithCell(p.X, p.Y, c)
		}
		return nil
	}
	if err := place(doc.Trees, world.Tree); err != nil {
		return nil, err
	}
	if err := place(doc.Mushrooms, world.Mushroom); err != nil {
		return nil, err
	}
	if err := place(doc.Clovers, world.Clover); err != nil {
		return nil, err
	}

	if doc.Kara != nil {
		k := doc.Kara
		if !w.InBounds(k.X, k.Y) {
			return nil, fmt.Errorf("%w: kara at (%d,%d) outside %dx%d grid",
				ErrMalformed, k.X, k.Y, doc.Width, doc.Height)
		}
		if k.Direction < 0 || k.Direction > 3 {
			return nil, fmt.Errorf("%w: direction code %d", ErrMalformed, k.Direction)
		}
		if k.Inventory < 0 {
			return nil, fmt.Errorf("%w: negative inventory %d", ErrMalformed, k.Inventory)
		}
		if c := w.Cell(k.X, k.Y); c == world.Tree || c == world.Mushroom {
			return nil, fmt.Errorf("%w: kara at (%d,%d) overlaps an obstacle", ErrMalformed, k.X, k.Y)
		}
		w = w.WithCharacter(world.Character{
			Pos:       world.Position{X: k.X, Y: k.Y},
			Dir:       world.Direction(k.Direction),
			Inventory: k.Inventory,
		})
	}
	return w, nil
}
