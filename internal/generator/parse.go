package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/qs3c/ecomwords_server/internal/model"
)

const fence = "```"

// NormalizeResponse 只去掉一层 ```json / ``` 包裹：开头的标记必去，结尾的标记有则去。
// 去掉后的内容如果仍是代码块，交给 JSON 解析报格式错误
func NormalizeResponse(raw string) string {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, fence+"json"):
		s = s[len(fence+"json"):]
	case strings.HasPrefix(s, fence):
		s = s[len(fence):]
	default:
		return s
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, fence)
	return strings.TrimSpace(s)
}

type listingPayload struct {
	Titles      *[]string `json:"titles"`
	Description *string   `json:"description"`
	Bullets     *[]string `json:"bullets"`
	Keywords    *[]string `json:"keywords"`
}

// ParseContent 解析模型输出，缺少字段或字段为 null 均视为格式错误
func ParseContent(raw string) (*model.GeneratedContent, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyResponse
	}

	text := NormalizeResponse(raw)
	var payload listingPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	missing := make([]string, 0)
	if payload.Titles == nil {
		missing = append(missing, "titles")
	}
	if payload.Description == nil {
		missing = append(missing, "description")
	}
	if payload.Bullets == nil {
		missing = append(missing, "bullets")
	}
	if payload.Keywords == nil {
		missing = append(missing, "keywords")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedResponse, strings.Join(missing, ", "))
	}

	return &model.GeneratedContent{
		Titles:      *payload.Titles,
		Description: *payload.Description,
		Bullets:     *payload.Bullets,
		Keywords:    *payload.Keywords,
	}, nil
}
