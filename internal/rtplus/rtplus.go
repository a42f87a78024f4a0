// Package rtplus builds and parses the SmartGen RT+ positional tagging
// payload. RT+ marks substrings of the 64-character display text as
// "artist" or "title" by (content type, start, length) triples; the
// encoder accepts exactly two triples followed by a running bit and a
// timeout in minutes.
package rtplus

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/genricoloni/rdsrelay/internal/domain"
)

// Content type codes understood by the encoder
const (
	// ContentTypeArtist tags a substring as the artist name
	ContentTypeArtist = "04"
	// ContentTypeTitle tags a substring as the track title
	ContentTypeTitle = "01"
	// ContentTypeBlank pads the payload when only one field matched
	ContentTypeBlank = "00"
)

const (
	// maxFieldLength is the bound of the first block's length field
	maxFieldLength = 63
	// maxFinalLength is the narrower bound of the last block's length field
	maxFinalLength = 31
	// runningBit is always 1; this system never signals "not running"
	runningBit = "1"
)

// Decoded holds the substrings recovered from an RT+ payload
type Decoded struct {
	Artist string
	Title  string
}

// Encode builds the RT+TAG payload for fullText, tagging the first
// literal occurrence of artist and title. A field that is empty or not
// found in fullText is omitted; if only one field matched, a blank block
// fills the second slot. Fields longer than 63 characters are truncated
// before their position is recorded, and the length of whichever block
// ends up last is clamped to 31.
//
// Encode fails when neither field is found; the caller must not send an
// RT+TAG command in that case.
func Encode(fullText, artist, title string, timeoutMinutes int) (string, error) {
	var blocks []string

	if block, ok := locate(fullText, artist, ContentTypeArtist); ok {
		blocks = append(blocks, block)
	}
	if block, ok := locate(fullText, title, ContentTypeTitle); ok {
		blocks = append(blocks, block)
	}

	if len(blocks) == 0 {
		return "", domain.NewCommandError("RT+TAG", domain.ErrEncode,
			fmt.Errorf("neither artist nor title found in text %q", fullText))
	}

	if len(blocks) == 1 {
		blocks = append(blocks, strings.Join([]string{ContentTypeBlank, "0", "0"}, ","))
	}

	// The encoder's last length field is only 5 bits wide
	blocks[len(blocks)-1] = clampLength(blocks[len(blocks)-1], maxFinalLength)

	parts := append(blocks, runningBit, strconv.Itoa(timeoutMinutes))
	return strings.Join(parts, ","), nil
}

// locate finds the first occurrence of field in fullText and renders its
// block. Empty fields never match; overlong fields are trimmed to the
// 6-bit position bound before their length is recorded.
func locate(fullText, field, contentType string) (string, bool) {
	if field == "" {
		return "", false
	}
	start := strings.Index(fullText, field)
	if start < 0 {
		return "", false
	}
	length := len(field)
	if length > maxFieldLength {
		length = maxFieldLength
	}
	return fmt.Sprintf("%s,%d,%d", contentType, start, length), true
}

// clampLength rewrites a block's length field if it exceeds bound
func clampLength(block string, bound int) string {
	fields := strings.Split(block, ",")
	length, err := strconv.Atoi(fields[2])
	if err != nil || length <= bound {
		return block
	}
	return strings.Join(append(fields[:2], strconv.Itoa(bound)), ",")
}

// Decode recovers the artist and title substrings from an RT+ payload
// against the display text it was built for. It is used as a sanity
// check on outgoing payloads and to enrich notification events.
func Decode(payload, text string) (Decoded, error) {
	fields := strings.Split(payload, ",")
	if len(fields) < 2 {
		return Decoded{}, fmt.Errorf("malformed RT+ payload %q", payload)
	}

	// Drop the trailing running bit and timeout
	fields = fields[:len(fields)-2]
	if len(fields) != 6 {
		return Decoded{}, fmt.Errorf("RT+ payload has %d fields, want 6", len(fields))
	}
	for _, f := range fields {
		if !isAlphanumeric(f) {
			return Decoded{}, fmt.Errorf("RT+ payload field %q is not alphanumeric", f)
		}
	}

	if fields[0] != ContentTypeArtist && fields[0] != ContentTypeTitle {
		return Decoded{}, fmt.Errorf("unexpected leading content type %q", fields[0])
	}
	if fields[3] != ContentTypeArtist && fields[3] != ContentTypeTitle && fields[3] != ContentTypeBlank {
		return Decoded{}, fmt.Errorf("unexpected trailing content type %q", fields[3])
	}

	spans := map[string][2]int{}
	for _, triple := range [][]string{fields[0:3], fields[3:6]} {
		start, err := strconv.Atoi(triple[1])
		if err != nil {
			return Decoded{}, fmt.Errorf("bad start position %q: %w", triple[1], err)
		}
		length, err := strconv.Atoi(triple[2])
		if err != nil {
			return Decoded{}, fmt.Errorf("bad length %q: %w", triple[2], err)
		}
		spans[triple[0]] = [2]int{start, length}
	}

	artist, err := substring(text, spans[ContentTypeArtist])
	if err != nil {
		return Decoded{}, err
	}
	title, err := substring(text, spans[ContentTypeTitle])
	if err != nil {
		return Decoded{}, err
	}
	return Decoded{Artist: artist, Title: title}, nil
}

// substring extracts text[start:start+length]. A missing span decodes to
// the empty string; one that runs past the text is an error.
func substring(text string, span [2]int) (string, error) {
	start, length := span[0], span[1]
	if length == 0 {
		return "", nil
	}
	if start < 0 || start+length > len(text) {
		return "", fmt.Errorf("span (%d,%d) out of range for text of length %d", start, length, len(text))
	}
	return text[start : start+length], nil
}

func isAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return true
}
