package logschema

import (
	"fmt"
	"sort"
	"strings"
)

// 核心日志事件名。离线分析工具按事件名过滤，改名需同步下游。
const (
	EventQuote = "quote_event"
	EventFill  = "fill_event"
	EventVenue = "venue_event"
	EventRisk  = "risk_event"
	EventFeed  = "feed_event"
)

// Schema 定义每个日志事件所需的关键字段，便于集中校验。
type Schema struct {
	Event    string
	Required []string
}

var schemas = map[string]Schema{
	EventQuote: {
		Event:    EventQuote,
		Required: []string{"instrument", "action"},
	},
	EventFill: {
		Event:    EventFill,
		Required: []string{"instrument", "side", "price", "qty", "position"},
	},
	EventVenue: {
		Event:    EventVenue,
		Required: []string{"instrument", "action", "side"},
	},
	EventRisk: {
		Event:    EventRisk,
		Required: []string{"instrument", "reason"},
	},
	EventFeed: {
		Event:    EventFeed,
		Required: []string{"url", "state"},
	},
}

// Known 返回所有事件名，便于外部生成文档。
func Known() []string {
	names := make([]string, 0, len(schemas))
	for k := range schemas {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Validate 检查日志字段是否包含 schema 中要求的 key。
func Validate(event string, fields map[string]interface{}) error {
	s, ok := schemas[event]
	if !ok {
		return nil
	}
	var missing []string
	for _, key := range s.Required {
		if _, exists := fields[key]; !exists {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing fields: %s", strings.Join(missing, ","))
	}
	return nil
}
