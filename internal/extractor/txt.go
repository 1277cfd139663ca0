package extractor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type txtFormat struct{}

func (txtFormat) Name() string         { return "txt" }
func (txtFormat) Extensions() []string { return []string{".txt", ".md"} }
func (txtFormat) ContentType() string  { return "text/plain" }

// Units decodes the file as a single unit. Spacing and line endings are kept
// as they are in the file.
func (txtFormat) Units(data []byte) ([]string, error) {
	if err := ValidateTXT(data); err != nil {
		return nil, err
	}

	text, err := decodeText(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode text file: %w", err)
	}

	return []string{strings.ReplaceAll(text, "\x00", "")}, nil
}

func decodeText(data []byte) (string, error) {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return string(data[3:]), nil
	}

	if len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE {
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		decoded, _, err := transform.Bytes(decoder, data)
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	}

	if len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF {
		decoder := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		decoded, _, err := transform.Bytes(decoder, data)
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	decoder := charmap.Windows1252.NewDecoder()
	decoded, _, err := transform.Bytes(decoder, data)
	if err == nil {
		return string(decoded), nil
	}

	decoder = charmap.ISO8859_1.NewDecoder()
	decoded, _, err = transform.Bytes(decoder, data)
	if err == nil {
		return string(decoded), nil
	}

	return string(data), nil
}

// ValidateTXT checks if the data appears to be valid text
func ValidateTXT(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty file")
	}

	// UTF-16 text is mostly NUL bytes in the ASCII range.
	if len(data) >= 2 && ((data[0] == 0xFF && data[1] == 0xFE) || (data[0] == 0xFE && data[1] == 0xFF)) {
		return nil
	}

	printableCount := 0
	sampleSize := 512
	if len(data) < sampleSize {
		sampleSize = len(data)
	}

	for i := 0; i < sampleSize; i++ {
		b := data[i]
		// Printable ASCII, tabs, newlines, carriage returns and high bytes (UTF-8 / Latin-1)
		if (b >= 32 && b <= 126) || b == '\t' || b == '\n' || b == '\r' || b >= 0x80 {
			printableCount++
		}
	}

	if float64(printableCount)/float64(sampleSize) < 0.8 {
		return fmt.Errorf("file does not appear to be valid text")
	}

	return nil
}
