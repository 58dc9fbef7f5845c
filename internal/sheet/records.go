package sheet

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/extrame/ole2"
	"golang.org/x/text/encoding/htmlindex"
)

// BIFF record identifiers read by the cell scanner.
const (
	recFormula    = 0x0006
	recEOF        = 0x000A
	recDateMode   = 0x0022
	recBoundSheet = 0x0085
	recMulRK      = 0x00BD
	recXF         = 0x00E0
	recNumber     = 0x0203
	recLabel      = 0x0204
	recBoolErr    = 0x0205
	recString     = 0x0207
	recRK         = 0x027E
	recFormat     = 0x041E
	recBOF        = 0x0809
)

const biff8Version = 0x0600

var errNoWorkbookStream = errors.New("no Workbook stream in compound file")

// cellValues holds rendered text by row, then column.
type cellValues map[int]map[int]string

func (c cellValues) set(row, col int, text string) {
	cols, ok := c[row]
	if !ok {
		cols = make(map[int]string)
		c[row] = cols
	}
	cols[col] = text
}

// maxRow returns the highest row index holding a value, or -1.
func (c cellValues) maxRow() int {
	last := -1
	for row := range c {
		if row > last {
			last = row
		}
	}
	return last
}

type recordReader struct {
	r   io.Reader
	hdr [4]byte
}

func (rr *recordReader) next() (id uint16, data []byte, err error) {
	if _, err = io.ReadFull(rr.r, rr.hdr[:]); err != nil {
		return 0, nil, err
	}
	id = binary.LittleEndian.Uint16(rr.hdr[0:2])
	data = make([]byte, binary.LittleEndian.Uint16(rr.hdr[2:4]))
	if _, err = io.ReadFull(rr.r, data); err != nil {
		return 0, nil, err
	}
	return id, data, nil
}

// globals is what the cell scanner needs from the workbook globals
// substream: number formats, the date system and sheet offsets.
type globals struct {
	biff5     bool
	date1904  bool
	charset   string
	xfFormats []uint16
	formats   map[uint16]string
	sheets    []uint32
}

// scanFirstSheet decodes the numeric, boolean and formula cells of the first
// worksheet, and the byte-string labels of BIFF5 workbooks. extrame/xls
// renders formula cells as a placeholder and mishandles numbers carrying a
// built-in format, so these cells are read straight from the record stream.
func scanFirstSheet(rs io.ReadSeeker, charset string) (cellValues, error) {
	doc, err := ole2.Open(rs, charset)
	if err != nil {
		return nil, err
	}
	stream, err := workbookStream(doc)
	if err != nil {
		return nil, err
	}

	g, err := readGlobals(&recordReader{r: stream}, charset)
	if err != nil {
		return nil, err
	}
	if len(g.sheets) == 0 {
		return nil, ErrNoSheets
	}
	if _, err := stream.Seek(int64(g.sheets[0]), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek first sheet: %w", err)
	}
	return g.scanSheet(&recordReader{r: stream})
}

func workbookStream(doc *ole2.Ole) (io.ReadSeeker, error) {
	dir, err := doc.ListDir()
	if err != nil {
		return nil, err
	}
	var book, root *ole2.File
	for _, file := range dir {
		switch file.Name() {
		case "Workbook":
			if book == nil {
				book = file
			}
		case "Book":
			book = file
		case "Root Entry":
			root = file
		}
	}
	if book == nil || root == nil {
		return nil, errNoWorkbookStream
	}
	return doc.OpenFile(book, root), nil
}

func readGlobals(rr *recordReader, charset string) (*globals, error) {
	g := &globals{charset: charset, formats: make(map[uint16]string)}
	for {
		id, data, err := rr.next()
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return g, nil
		}
		if err != nil {
			return nil, fmt.Errorf("workbook globals: %w", err)
		}

		switch id {
		case recBOF:
			if len(data) >= 2 {
				g.biff5 = binary.LittleEndian.Uint16(data) != biff8Version
			}
		case recDateMode:
			g.date1904 = len(data) >= 2 && binary.LittleEndian.Uint16(data) == 1
		case recXF:
			if len(data) >= 4 {
				g.xfFormats = append(g.xfFormats, binary.LittleEndian.Uint16(data[2:4]))
			}
		case recFormat:
			if len(data) >= 3 {
				g.formats[binary.LittleEndian.Uint16(data)] = g.formatCode(data[2:])
			}
		case recBoundSheet:
			if len(data) >= 4 {
				g.sheets = append(g.sheets, binary.LittleEndian.Uint32(data))
			}
		case recEOF:
			return g, nil
		}
	}
}

func (g *globals) formatCode(data []byte) string {
	if g.biff5 {
		n := int(data[0])
		return decodeBytes(data[1:min(1+n, len(data))], g.charset)
	}
	if len(data) < 2 {
		return ""
	}
	return unicodeString(data[2:], int(binary.LittleEndian.Uint16(data)))
}

// scanSheet reads one worksheet substream up to its EOF record. Records of
// embedded substreams (charts) are skipped.
func (g *globals) scanSheet(rr *recordReader) (cellValues, error) {
	cells := make(cellValues)
	depth := 0
	pendingRow, pendingCol := -1, -1

	for {
		id, data, err := rr.next()
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return cells, nil
		}
		if err != nil {
			return nil, fmt.Errorf("worksheet: %w", err)
		}

		switch id {
		case recBOF:
			depth++
			continue
		case recEOF:
			depth--
			if depth <= 0 {
				return cells, nil
			}
			continue
		}
		if depth > 1 {
			continue
		}

		switch id {
		case recNumber:
			if len(data) >= 14 {
				row, col, xf := cellHeader(data)
				v := math.Float64frombits(binary.LittleEndian.Uint64(data[6:14]))
				cells.set(row, col, g.number(v, xf))
			}
		case recRK:
			if len(data) >= 10 {
				row, col, xf := cellHeader(data)
				cells.set(row, col, g.number(rkValue(binary.LittleEndian.Uint32(data[6:10])), xf))
			}
		case recMulRK:
			if len(data) >= 6 {
				row := int(binary.LittleEndian.Uint16(data[0:2]))
				first := int(binary.LittleEndian.Uint16(data[2:4]))
				for i := 0; 4+6*i+6 <= len(data)-2; i++ {
					off := 4 + 6*i
					xf := binary.LittleEndian.Uint16(data[off : off+2])
					rk := binary.LittleEndian.Uint32(data[off+2 : off+6])
					cells.set(row, first+i, g.number(rkValue(rk), xf))
				}
			}
		case recBoolErr:
			if len(data) >= 8 {
				row, col, _ := cellHeader(data)
				text := ""
				if data[7] == 0 {
					text = boolText(data[6] != 0)
				}
				cells.set(row, col, text)
			}
		case recFormula:
			if len(data) >= 20 {
				row, col, xf := cellHeader(data)
				text, isString := g.formulaResult(data[6:14], xf)
				cells.set(row, col, text)
				pendingRow, pendingCol = -1, -1
				if isString {
					pendingRow, pendingCol = row, col
				}
			}
		case recString:
			if pendingRow >= 0 && len(data) >= 2 {
				cells.set(pendingRow, pendingCol, g.stringValue(data))
				pendingRow, pendingCol = -1, -1
			}
		case recLabel:
			// BIFF8 labels are UTF-16 and left to extrame/xls.
			if g.biff5 && len(data) >= 8 {
				row, col, _ := cellHeader(data)
				n := int(binary.LittleEndian.Uint16(data[6:8]))
				cells.set(row, col, decodeBytes(data[8:min(8+n, len(data))], g.charset))
			}
		}
	}
}

func cellHeader(data []byte) (row, col int, xf uint16) {
	return int(binary.LittleEndian.Uint16(data[0:2])),
		int(binary.LittleEndian.Uint16(data[2:4])),
		binary.LittleEndian.Uint16(data[4:6])
}

// formulaResult renders the cached result of a FORMULA record. isString
// reports that the text follows in a STRING record.
func (g *globals) formulaResult(res []byte, xf uint16) (text string, isString bool) {
	if res[6] != 0xFF || res[7] != 0xFF {
		return g.number(math.Float64frombits(binary.LittleEndian.Uint64(res)), xf), false
	}
	switch res[0] {
	case 0:
		return "", true
	case 1:
		return boolText(res[2] != 0), false
	default:
		// error codes and empty strings are missing values
		return "", false
	}
}

func (g *globals) stringValue(data []byte) string {
	n := int(binary.LittleEndian.Uint16(data[0:2]))
	if g.biff5 {
		return decodeBytes(data[2:min(2+n, len(data))], g.charset)
	}
	return unicodeString(data[2:], n)
}

func (g *globals) number(v float64, xf uint16) string {
	if g.isDate(xf) {
		return excelDate(v, g.date1904)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (g *globals) isDate(xf uint16) bool {
	if int(xf) >= len(g.xfFormats) {
		return false
	}
	idx := g.xfFormats[xf]
	if code, ok := g.formats[idx]; ok {
		return isDateFormat(code)
	}
	return builtinDateFormat(idx)
}

// builtinDateFormat reports whether a built-in format index (one with no
// FORMAT record) displays a date or time. 27-36 and 50-58 are the CJK
// locale date formats.
func builtinDateFormat(idx uint16) bool {
	return 14 <= idx && idx <= 22 ||
		27 <= idx && idx <= 36 ||
		45 <= idx && idx <= 47 ||
		50 <= idx && idx <= 58
}

// isDateFormat reports whether the first section of a number format code
// contains a date or time token outside quoted text and escapes.
func isDateFormat(code string) bool {
	for i := 0; i < len(code); i++ {
		switch c := code[i]; c {
		case ';':
			return false
		case '"':
			end := strings.IndexByte(code[i+1:], '"')
			if end < 0 {
				return false
			}
			i += end + 1
		case '\\', '_', '*':
			i++
		case '[':
			end := strings.IndexByte(code[i+1:], ']')
			if end < 0 {
				return false
			}
			if elapsedTime(code[i+1 : i+1+end]) {
				return true
			}
			i += end + 1
		default:
			switch c | 0x20 {
			case 'y', 'm', 'd', 'h', 's':
				return true
			}
		}
	}
	return false
}

// elapsedTime matches bracketed duration tokens such as [h] or [mm].
func elapsedTime(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch s[i] | 0x20 {
		case 'h', 'm', 's':
		default:
			return false
		}
	}
	return true
}

// excelDate renders a serial date. Whole days print as a date, fractions
// below one day as a time of day.
func excelDate(serial float64, date1904 bool) string {
	epoch := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	switch {
	case date1904:
		epoch = time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)
	case serial < 61:
		// 1900 is treated as a leap year before March.
		epoch = epoch.AddDate(0, 0, 1)
	}

	days := math.Floor(serial)
	secs := math.Round((serial - days) * 86400)
	t := epoch.AddDate(0, 0, int(days)).Add(time.Duration(secs) * time.Second)

	switch {
	case serial >= 0 && serial < 1:
		return t.Format(time.TimeOnly)
	case t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0:
		return t.Format(time.DateOnly)
	default:
		return t.Format(time.DateTime)
	}
}

func rkValue(rk uint32) float64 {
	var v float64
	if rk&0x02 != 0 {
		v = float64(int32(rk) >> 2)
	} else {
		v = math.Float64frombits(uint64(rk&^0x03) << 32)
	}
	if rk&0x01 != 0 {
		v /= 100
	}
	return v
}

func boolText(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// unicodeString decodes a BIFF8 string body (option flags, then
// characters) holding n characters.
func unicodeString(data []byte, n int) string {
	if len(data) == 0 {
		return ""
	}
	flags := data[0]
	off := 1
	if flags&0x08 != 0 {
		off += 2
	}
	if flags&0x04 != 0 {
		off += 4
	}
	if off > len(data) {
		return ""
	}
	body := data[off:]

	if flags&0x01 == 0 {
		body = body[:min(n, len(body))]
		runes := make([]rune, len(body))
		for i, b := range body {
			runes[i] = rune(b)
		}
		return string(runes)
	}

	units := make([]uint16, min(n, len(body)/2))
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(body[2*i:])
	}
	return string(utf16.Decode(units))
}

// decodeBytes decodes BIFF5 byte strings with the configured charset,
// falling back to the raw bytes for unknown charset names.
func decodeBytes(b []byte, charset string) string {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return string(b)
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}
