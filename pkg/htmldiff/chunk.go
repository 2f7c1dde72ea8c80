package htmldiff

import "strings"

var chunkReplacer = strings.NewReplacer("&nbsp;", " ", "<", " <", ">", "> ")

// chunks splits markup into whole tags and whitespace-separated words.
// A tag that contains spaces (attributes) is kept as one chunk.
func chunks(content string) []string {
	if content == "" {
		return nil
	}
	fields := strings.Fields(chunkReplacer.Replace(content))
	out := make([]string, 0, len(fields))
	for i := 0; i < len(fields); i++ {
		item := fields[i]
		if !strings.HasPrefix(item, "<") {
			out = append(out, item)
			continue
		}
		chunk := item
		for !strings.HasSuffix(item, ">") && i+1 < len(fields) {
			i++
			item = fields[i]
			chunk += " " + item
		}
		out = append(out, chunk)
	}
	return out
}

// rechunker folds a changed opening tag and everything up to its matching
// close into a single chunk, so the second pass never splits an element.
type rechunker struct {
	out   []string
	depth int
}

func (r *rechunker) push(items []string, changed bool) {
	for _, item := range items {
		if r.depth > 0 {
			r.out[len(r.out)-1] += " " + item
		} else {
			r.out = append(r.out, item)
		}

		switch {
		case changed && r.depth == 0 && isOpenTag(item):
			r.depth = 1
		case r.depth > 0 && strings.HasPrefix(item, "</"):
			r.depth--
		case r.depth > 0 && isOpenTag(item):
			r.depth++
		}
	}
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "link": true, "meta": true, "source": true, "track": true, "wbr": true,
}

// isOpenTag reports whether item opens an element that has a closing tag.
func isOpenTag(item string) bool {
	if !strings.HasPrefix(item, "<") || strings.HasPrefix(item, "</") || strings.HasSuffix(item, "/>") {
		return false
	}
	name := strings.TrimPrefix(item, "<")
	if i := strings.IndexAny(name, " />"); i >= 0 {
		name = name[:i]
	}
	return !voidElements[strings.ToLower(name)]
}
