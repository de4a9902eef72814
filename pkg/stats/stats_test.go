package stats

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erfanjahi0/pulsechat/pkg/config"
	"github.com/matryer/is"
)

func TestHandler(t *testing.T) {
	is := is.New(t)
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	is.Equal(w.Code, http.StatusOK)
	is.True(strings.Contains(w.Body.String(), "go_goroutines"))
}

func TestNewStatsServerNilConfig(t *testing.T) {
	is := is.New(t)
	_, err := NewStatsServer(context.TODO())
	is.Equal(err, config.ErrNilConfig)
}
