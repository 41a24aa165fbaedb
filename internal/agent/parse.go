package agent

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/haasonsaas/nexus-rag/pkg/models"
)

// rawDisplayObject mirrors the wire shape the system prompt asks the
// model to emit: {"type", "content", "source"}.
type rawDisplayObject struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Source  string `json:"source"`
}

var codeFence = regexp.MustCompile("^```(?:json)?\\s*([\\s\\S]*?)\\s*```$")

// arrayOfObjectsPattern and singleObjectPattern are the two fallback
// structural-extraction patterns PARSE tries when the model's content
// does not parse as clean JSON: the first JSON-array-of-objects, or
// failing that the first JSON object, containing both "type" and
// "content" keys.
var (
	arrayOfObjectsPattern = regexp.MustCompile(`(?s)\[\s*\{.*?"type"\s*:.*?"content"\s*:.*?\}\s*\]`)
	singleObjectPattern   = regexp.MustCompile(`(?s)\{[^{}]*"type"\s*:[^{}]*"content"\s*:[^{}]*\}`)
)

// ParseTerminalResponse implements the PARSE state: strip code fences,
// try strict JSON, fall back to structural extraction, and finally fall
// back to a single raw text display object.
func ParseTerminalResponse(content string) models.ParsedResponse {
	trimmed := strings.TrimSpace(content)
	if m := codeFence.FindStringSubmatch(trimmed); m != nil {
		trimmed = strings.TrimSpace(m[1])
	}

	if objs, ok := tryParseJSON(trimmed); ok {
		return toParsedResponse(objs)
	}

	if m := arrayOfObjectsPattern.FindString(trimmed); m != "" {
		if objs, ok := tryParseJSON(m); ok {
			return toParsedResponse(objs)
		}
	}
	if m := singleObjectPattern.FindString(trimmed); m != "" {
		if objs, ok := tryParseJSON(m); ok {
			return toParsedResponse(objs)
		}
	}

	return models.ParsedResponse{
		Text: content,
		DisplayObjects: []models.DisplayObject{
			{Type: models.DisplayText, Content: content, Source: &models.SourceInfo{DocumentID: "agent-response"}},
		},
	}
}

func tryParseJSON(s string) ([]rawDisplayObject, bool) {
	if s == "" {
		return nil, false
	}
	var arr []rawDisplayObject
	if err := json.Unmarshal([]byte(s), &arr); err == nil && len(arr) > 0 {
		return arr, true
	}
	var single rawDisplayObject
	if err := json.Unmarshal([]byte(s), &single); err == nil && single.Content != "" {
		return []rawDisplayObject{single}, true
	}
	return nil, false
}

func toParsedResponse(objs []rawDisplayObject) models.ParsedResponse {
	var texts []string
	display := make([]models.DisplayObject, 0, len(objs))
	for _, o := range objs {
		dt := models.DisplayText
		if o.Type == "image" {
			dt = models.DisplayImage
		} else if o.Type == "code" {
			dt = models.DisplayCode
		}
		source := o.Source
		if source == "" {
			source = "agent-response"
		}
		display = append(display, models.DisplayObject{
			Type:    dt,
			Content: o.Content,
			Source:  &models.SourceInfo{DocumentID: source},
		})
		if dt == models.DisplayText {
			texts = append(texts, o.Content)
		}
	}
	return models.ParsedResponse{Text: strings.Join(texts, "\n"), DisplayObjects: display}
}

// ResolvedSources returns the deduplicated union of (a) source ids
// referenced by display objects and (b) remaining entries in the
// per-run source map, as the output contract requires.
func ResolvedSources(parsed models.ParsedResponse, sourceMap *models.SourceMap) []*models.SourceInfo {
	seen := make(map[string]bool)
	var out []*models.SourceInfo

	for _, d := range parsed.DisplayObjects {
		if d.Source == nil || d.Source.DocumentID == "" || d.Source.DocumentID == "agent-response" {
			continue
		}
		if idx, err := strconv.Atoi(d.Source.DocumentID); err == nil {
			if src, ok := sourceMap.Get(idx); ok && !seen[src.DocumentID+"#"+strconv.Itoa(src.ChunkIndex)] {
				seen[src.DocumentID+"#"+strconv.Itoa(src.ChunkIndex)] = true
				out = append(out, src)
			}
		}
	}

	for _, src := range sourceMap.All() {
		key := src.DocumentID + "#" + strconv.Itoa(src.ChunkIndex)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, src)
	}
	return out
}
