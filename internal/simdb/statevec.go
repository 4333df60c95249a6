package simdb

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// parseItemVector extracts the numeric entries of a serialized agent state
// vector. State vectors are stored as XML islands whose payload sits in
// <item> elements, e.g.
//
//	<val><count>3</count><item_version>0</item_version>
//	<item>0</item><item>12</item><item>50</item></val>
//
// Elements other than <item> carry serializer bookkeeping and are skipped.
func parseItemVector(raw string) ([]float64, error) {
	dec := xml.NewDecoder(strings.NewReader(raw))
	var (
		out    []float64
		inItem bool
		text   strings.Builder
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("simdb: parse state vector: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "item" {
				inItem = true
				text.Reset()
			}
		case xml.CharData:
			if inItem {
				text.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local != "item" {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(text.String()), 64)
			if err != nil {
				return nil, fmt.Errorf("simdb: state vector item %q: %w", text.String(), err)
			}
			out = append(out, v)
			inItem = false
		}
	}
	return out, nil
}
