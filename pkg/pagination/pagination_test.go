package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	return FromContext(c)
}

func TestFromContext(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", DefaultLimit, 0},
		{"explicit", "limit=50&offset=10", 50, 10},
		{"limit capped", "limit=500", MaxLimit, 0},
		{"negative ignored", "limit=-5&offset=-3", DefaultLimit, 0},
		{"garbage ignored", "limit=abc&offset=xyz", DefaultLimit, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := paramsFor(t, tt.query)
			if p.Limit != tt.wantLimit || p.Offset != tt.wantOffset {
				t.Errorf("got %+v, want limit=%d offset=%d", p, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestParamsNavigation(t *testing.T) {
	p := Params{Limit: 20, Offset: 20}

	if !p.HasNext(100) {
		t.Error("expected HasNext for total=100")
	}
	if p.HasNext(40) {
		t.Error("expected no next page at total=40")
	}
	if !p.HasPrevious() {
		t.Error("expected HasPrevious at offset=20")
	}
	if p.NextOffset() != 40 {
		t.Errorf("NextOffset = %d", p.NextOffset())
	}
	if p.PreviousOffset() != 0 {
		t.Errorf("PreviousOffset = %d", p.PreviousOffset())
	}
	if (Params{Limit: 20, Offset: 5}).PreviousOffset() != 0 {
		t.Error("PreviousOffset should clamp to 0")
	}
	if got := p.SQL(); got != "LIMIT 20 OFFSET 20" {
		t.Errorf("SQL = %q", got)
	}
}

func TestNewResponse(t *testing.T) {
	r := NewResponse([]int{1, 2, 3}, 50, 20, 0)
	if !r.HasMore {
		t.Error("expected HasMore")
	}
	r = NewResponse([]int{1}, 10, 20, 0)
	if r.HasMore {
		t.Error("expected no more")
	}
}
