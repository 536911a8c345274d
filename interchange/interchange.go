// Package interchange maps worlds and state machine programs to and from
// the XML file formats of the legacy desktop teaching tool (.world and
// .kara), plus plain JSON mirrors of the internal shapes. The XML side
// exists for compatibility and is lossy where the legacy format is (see
// EncodeProgram); the JSON side round-trips everything.
package interchange

import "errors"

// Format identifies a serialized document's encoding.
type Format int

const (
	FormatUnknown Format = iota
	FormatXML
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatXML:
		return "xml"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// ErrUnknownFormat reports a document that is neither XML nor JSON.
var ErrUnknownFormat = errors.New("interchange: unrecognized format")

// ErrMalformed reports a document that parsed but does not describe a
// valid world or program.
var ErrMalformed = errors.New("interchange: malformed document")

// DetectFormat sniffs the encoding from the first significant byte:
// '<' (an XML declaration or root tag) means XML, '{' or '[' means JSON.
func DetectFormat(data []byte) Format {
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case ' ', '\t', '\r', '\n':
			continue
		case 0xEF:
			// UTF-8 BOM.
			if i+2 < len(data) && data[i+1] == 0xBB && data[i+2] == 0xBF {
				i += 2
				continue
			}
			return FormatUnknown
		case '<':
			return FormatXML
		case '{', '[':
			return FormatJSON
		default:
			return FormatUnknown
		}
	}
	return FormatUnknown
}
