package shortener

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"shortlink-service/internal/model"
)

var codePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// maxCodeLength 解析时接受的短码最大长度，超出的请求直接视为不存在
const maxCodeLength = 64

func normalizeReserved(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// buildLink 校验创建请求并返回待写入的记录（Code 未填）
func (s *Service) buildLink(req ShortenRequest, now time.Time) (*model.ShortLink, error) {
	longURL := strings.TrimSpace(req.LongURL)
	if longURL == "" {
		return nil, invalid("long_url 不能为空")
	}
	if len(longURL) > s.opts.MaxURLLength {
		return nil, invalid("long_url 超过 %d 个字符", s.opts.MaxURLLength)
	}
	if err := s.validate.Var(longURL, "url"); err != nil {
		return nil, invalid("long_url 不是合法的 URL")
	}
	u, err := url.Parse(longURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil, invalid("long_url 必须是绝对地址")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, invalid("long_url 仅支持 http/https")
	}

	if req.CustomAlias != "" {
		if err := s.checkAlias(req.CustomAlias); err != nil {
			return nil, err
		}
	}

	var expiresAt *time.Time
	if req.ExpiresAt != nil {
		if !req.ExpiresAt.After(now) {
			return nil, invalid("expires_at 必须晚于当前时间")
		}
		t := req.ExpiresAt.UTC()
		expiresAt = &t
	}

	return &model.ShortLink{
		LongURL:       longURL,
		CreatedAt:     now,
		ExpiresAt:     expiresAt,
		IsCustomAlias: req.CustomAlias != "",
	}, nil
}

func (s *Service) checkAlias(alias string) error {
	if n := len(alias); n < s.opts.MinAliasLength || n > s.opts.MaxAliasLength {
		return invalid("别名长度必须在 %d 到 %d 之间", s.opts.MinAliasLength, s.opts.MaxAliasLength)
	}
	if !codePattern.MatchString(alias) {
		return invalid("别名只能包含字母、数字、下划线和连字符")
	}
	if s.isReserved(alias) {
		return invalid("别名 %q 为保留字", alias)
	}
	return nil
}

func (s *Service) isReserved(code string) bool {
	_, ok := s.reserved[normalizeReserved(code)]
	return ok
}

// validCode 解析路径上的短码格式检查，不合法的短码不会触达存储
func validCode(code string) bool {
	return len(code) > 0 && len(code) <= maxCodeLength && codePattern.MatchString(code)
}
