package faqrepo

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yanqian/faqbot/internal/domain/faq"
)

type seedDocument struct {
	FAQs []faq.Record `yaml:"faqs"`
}

// ParseSeed decodes a YAML catalog, either `faqs: [...]` or a bare list.
// Missing ids are numbered by position.
func ParseSeed(data []byte) ([]faq.Record, error) {
	var doc seedDocument
	if err := yaml.Unmarshal(data, &doc); err != nil || len(doc.FAQs) == 0 {
		var list []faq.Record
		if listErr := yaml.Unmarshal(data, &list); listErr != nil {
			if err != nil {
				return nil, fmt.Errorf("parse faq seed: %w", err)
			}
			return nil, fmt.Errorf("parse faq seed: %w", listErr)
		}
		doc.FAQs = list
	}

	records := make([]faq.Record, 0, len(doc.FAQs))
	for i, rec := range doc.FAQs {
		rec.Question = strings.TrimSpace(rec.Question)
		rec.Answer = strings.TrimSpace(rec.Answer)
		if rec.Question == "" || rec.Answer == "" {
			return nil, fmt.Errorf("faq seed entry %d: question and answer are required", i+1)
		}
		if rec.ID == 0 {
			rec.ID = int64(i + 1)
		}
		records = append(records, rec)
	}
	return records, nil
}

func splitKeywords(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if kw := strings.TrimSpace(part); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

func joinKeywords(keywords []string) string {
	return strings.Join(keywords, ",")
}
