package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Encoding
	EncInfo            Code = 1000
	EncUnsupportedChar Code = 1001
	EncInvalidWidth    Code = 1002
	EncEmptyName       Code = 1003
	EncDuplicateName   Code = 1004
	EncEmbeddedNul     Code = 1005 // U+0000 inside a literal (warning)
	EncInvalidName     Code = 1006

	// Source text
	SrcInfo        Code = 2000
	SrcInvalidUTF8 Code = 2001
	SrcBadEncoding Code = 2002

	// Ошибки I/O
	IOLoadFileError  Code = 4001
	IOWriteFileError Code = 4002

	// Manifest
	ProjInfo               Code = 5000
	ProjManifestInvalid    Code = 5001
	ProjLiteralNoText      Code = 5002
	ProjLiteralTextAndFile Code = 5003
	ProjUnknownKey         Code = 5004
	ProjUnknownFormat      Code = 5005
	ProjUnknownNormalize   Code = 5006

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:            "Unknown error",
	EncInfo:                "Encoding information",
	EncUnsupportedChar:     "Unsupported character",
	EncInvalidWidth:        "Invalid width",
	EncEmptyName:           "Empty literal name",
	EncDuplicateName:       "Duplicate literal name",
	EncEmbeddedNul:         "Embedded NUL character",
	EncInvalidName:         "Invalid literal name",
	SrcInfo:                "Source information",
	SrcInvalidUTF8:         "Invalid UTF-8",
	SrcBadEncoding:         "Unsupported source encoding",
	IOLoadFileError:        "I/O load file error",
	IOWriteFileError:       "I/O write file error",
	ProjInfo:               "Project information",
	ProjManifestInvalid:    "Invalid manifest",
	ProjLiteralNoText:      "Literal without text",
	ProjLiteralTextAndFile: "Literal with both text and file",
	ProjUnknownKey:         "Unknown manifest key",
	ProjUnknownFormat:      "Unknown output format",
	ProjUnknownNormalize:   "Unknown normalization form",
	ObsInfo:                "Observability information",
	ObsTimings:             "Pipeline timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("ENC%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SRC%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
