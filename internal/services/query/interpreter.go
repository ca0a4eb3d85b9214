package query

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigilo/internal/interfaces"
	"github.com/ternarybob/vigilo/internal/models"
)

const interpreterSystemPrompt = "You are a helpful assistant that interprets user queries about regulatory documents."

// Interpreter converts natural-language queries into search specs. The LLM
// path is primary; on any failure (no provider, transport error, malformed
// response) it falls back to rule-based interpretation without surfacing
// an error to the caller.
type Interpreter struct {
	llm    interfaces.LLMService
	logger arbor.ILogger
}

// NewInterpreter creates an interpreter. llm may be nil, in which case
// every query takes the rule-based path.
func NewInterpreter(llm interfaces.LLMService, logger arbor.ILogger) *Interpreter {
	return &Interpreter{
		llm:    llm,
		logger: logger,
	}
}

// Interpret produces a search spec for the query. It never returns an error:
// failures in the LLM path degrade to the rule-based interpreter, which is
// total.
func (i *Interpreter) Interpret(ctx context.Context, queryText string) *models.SearchSpec {
	if i.llm != nil {
		spec, err := i.llmInterpretation(ctx, queryText)
		if err == nil {
			i.logger.Debug().
				Str("query", queryText).
				Str("document_type", string(spec.DocumentType)).
				Str("date_kind", string(spec.DateFilter.Kind)).
				Msg("Query interpreted via LLM")
			return spec
		}
		i.logger.Warn().
			Err(err).
			Str("query", queryText).
			Msg("LLM interpretation failed, falling back to rules")
	}

	spec := ruleBasedInterpretation(queryText)
	i.logger.Debug().
		Str("query", queryText).
		Str("document_type", string(spec.DocumentType)).
		Str("date_kind", string(spec.DateFilter.Kind)).
		Msg("Query interpreted via rules")
	return spec
}

// wireSpec mirrors the JSON shape the LLM is asked to produce.
type wireSpec struct {
	DocumentType string   `json:"document_type"`
	DateFilter   wireDate `json:"date_filter"`
	Keywords     []string `json:"keywords"`
}

type wireDate struct {
	Type      string  `json:"type"`
	DateStart *string `json:"date_start"`
	DateEnd   *string `json:"date_end"`
}

func (i *Interpreter) llmInterpretation(ctx context.Context, queryText string) (*models.SearchSpec, error) {
	prompt := buildInterpretationPrompt(queryText)

	response, err := i.llm.Chat(ctx, []interfaces.Message{
		{Role: "system", Content: interpreterSystemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	raw, err := extractJSON(response)
	if err != nil {
		return nil, fmt.Errorf("extract JSON: %w", err)
	}

	var wire wireSpec
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, fmt.Errorf("unmarshal spec: %w", err)
	}

	return specFromWire(wire)
}

func buildInterpretationPrompt(queryText string) string {
	return fmt.Sprintf(`Interpret the following user query about DGFT regulatory documents and produce a JSON object describing the search.

Query: %q

Respond with ONLY a JSON object in this exact format:
{
  "document_type": "Notifications" | "Public Notices" | "Circulars" | "any",
  "date_filter": {
    "type": "specific" | "before" | "after" | "range" | "latest",
    "date_start": "YYYY-MM-DD" or null,
    "date_end": "YYYY-MM-DD" or null
  },
  "keywords": ["keyword1", "keyword2"]
}

Rules:
- "document_type" is "any" unless the query names a specific document type.
- "latest" means the user wants the most recent documents; it requires no dates.
- "specific" means a single exact date; set both date_start and date_end to it.
- "before" sets only date_end; "after" sets only date_start; "range" sets both.
- "keywords" are up to 5 lowercase content words from the query, excluding document type names and date words.`, queryText)
}

// extractJSON returns the first balanced {...} substring of the response,
// tolerating prose or code fences around the object.
func extractJSON(response string) (string, error) {
	start := strings.Index(response, "{")
	if start < 0 {
		return "", fmt.Errorf("no JSON object in response")
	}
	depth := 0
	inString := false
	escaped := false
	for idx := start; idx < len(response); idx++ {
		c := response[idx]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return response[start : idx+1], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced JSON object in response")
}

// specFromWire validates the LLM payload and maps it onto a search spec.
// Any structural violation is an error so the caller can fall back.
func specFromWire(wire wireSpec) (*models.SearchSpec, error) {
	spec := models.DefaultSpec()

	switch strings.ToLower(wire.DocumentType) {
	case "notifications", "notification":
		spec.DocumentType = models.SectionNotifications
	case "public notices", "public notice":
		spec.DocumentType = models.SectionPublicNotices
	case "circulars", "circular":
		spec.DocumentType = models.SectionCirculars
	case "any", "":
		spec.DocumentType = models.SectionAny
	default:
		return nil, fmt.Errorf("unknown document type %q", wire.DocumentType)
	}

	start := strDeref(wire.DateFilter.DateStart)
	end := strDeref(wire.DateFilter.DateEnd)

	switch strings.ToLower(wire.DateFilter.Type) {
	case "latest", "":
		spec.DateFilter = models.LatestFilter()
	case "specific":
		if start == "" {
			start = end
		}
		if start == "" {
			return nil, fmt.Errorf("specific filter without a date")
		}
		spec.DateFilter = models.SpecificFilter(start)
	case "before":
		if end == "" {
			return nil, fmt.Errorf("before filter without date_end")
		}
		spec.DateFilter = models.BeforeFilter(end)
	case "after":
		if start == "" {
			return nil, fmt.Errorf("after filter without date_start")
		}
		spec.DateFilter = models.AfterFilter(start)
	case "range":
		if start == "" || end == "" {
			return nil, fmt.Errorf("range filter missing an endpoint")
		}
		spec.DateFilter = models.RangeFilter(start, end)
	default:
		return nil, fmt.Errorf("unknown date filter type %q", wire.DateFilter.Type)
	}

	for _, kw := range wire.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		spec.Keywords = append(spec.Keywords, kw)
		if len(spec.Keywords) >= maxKeywords {
			break
		}
	}

	return spec, nil
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
