package storefront

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/dropscout/internal/contracts"
	"github.com/wonny/dropscout/internal/normalizer"
	"github.com/wonny/dropscout/pkg/config"
	"github.com/wonny/dropscout/pkg/httputil"
	"github.com/wonny/dropscout/pkg/logger"
)

func resultsPage(n int, price func(i int) string) string {
	var sb strings.Builder
	sb.WriteString(`<html><body><div id="results">`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, `<div class="store-result"><h3>Store %d</h3><span class="price">%s</span></div>`, i, price(i))
	}
	sb.WriteString(`</div></body></html>`)
	return sb.String()
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		stores int
		want   contracts.CompetitionLevel
	}{
		{0, contracts.CompetitionLow},
		{49, contracts.CompetitionLow},
		{50, contracts.CompetitionMedium},
		{199, contracts.CompetitionMedium},
		{200, contracts.CompetitionHigh},
		{5000, contracts.CompetitionHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFor(tt.stores), "stores=%d", tt.stores)
	}
}

func TestParse(t *testing.T) {
	html := `<div>
		<div class="store-result"><span class="price">$21.00</span></div>
		<div class="store-result"><span class="price">USD 1,299.00</span><span class="price">$5</span></div>
		<div class="store-result"><span class="price">call us</span></div>
		<div class="other"><span class="price">$1</span></div>
	</div>`

	a, err := Parse(strings.NewReader(html), ".store-result", ".price")
	require.NoError(t, err)
	assert.Equal(t, 3, a.StoreCount)
	assert.Equal(t, []float64{21, 1299}, a.Prices)
	assert.Equal(t, 660.0, a.AveragePrice)
	assert.Equal(t, contracts.CompetitionLow, a.Level)
}

func TestParse_Empty(t *testing.T) {
	a, err := Parse(strings.NewReader(`<html></html>`), ".store-result", ".price")
	require.NoError(t, err)
	assert.Equal(t, 0, a.StoreCount)
	assert.Zero(t, a.AveragePrice)
	assert.Empty(t, a.Prices)
}

func TestAnalyzer_FetchCompetition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "neck fan", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(resultsPage(120, func(i int) string { return "$30.00" })))
	}))
	defer srv.Close()

	log := logger.NewNop()
	a := NewAnalyzer(httputil.New(log, 5*time.Second).DisableRetry(), config.StorefrontConfig{
		SearchURL:      srv.URL + "/search?q=%s",
		ResultSelector: ".store-result",
		PriceSelector:  ".price",
	}, log)

	raw, err := a.FetchCompetition(context.Background(), contracts.ProductRef{Name: "neck fan"})
	require.NoError(t, err)

	c, err := normalizer.NormalizeCompetition(raw)
	require.NoError(t, err)
	assert.Equal(t, contracts.CompetitionSignal{Level: contracts.CompetitionMedium, StoreCount: 120, StoreCountKnown: true}, c)

	analysis, err := a.Analyze(context.Background(), "neck fan")
	require.NoError(t, err)
	assert.Equal(t, 30.0, analysis.AveragePrice)
	assert.Equal(t, "neck fan", analysis.Keyword)
}

func TestAnalyzer_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	log := logger.NewNop()
	hc := httputil.New(log, 5*time.Second).DisableRetry()

	a := NewAnalyzer(hc, config.StorefrontConfig{SearchURL: srv.URL + "?q=%s", ResultSelector: ".r"}, log)
	_, err := a.FetchCompetition(context.Background(), contracts.ProductRef{Name: "x"})
	assert.ErrorIs(t, err, contracts.ErrUpstreamUnavailable)
	assert.Contains(t, err.Error(), "403")

	a = NewAnalyzer(hc, config.StorefrontConfig{}, log)
	_, err = a.Analyze(context.Background(), "x")
	assert.ErrorIs(t, err, contracts.ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, ErrNoSearchURL)
}

func TestSimulated(t *testing.T) {
	s := NewSimulated()

	a, err := s.Analyze(context.Background(), "Neck Fan")
	require.NoError(t, err)
	b, err := s.Analyze(context.Background(), "neck fan")
	require.NoError(t, err)
	assert.Equal(t, a.StoreCount, b.StoreCount)
	assert.Equal(t, a.AveragePrice, b.AveragePrice)

	assert.GreaterOrEqual(t, a.StoreCount, 10)
	assert.Less(t, a.StoreCount, 310)
	assert.Equal(t, LevelFor(a.StoreCount), a.Level)

	raw, err := s.FetchCompetition(context.Background(), contracts.ProductRef{Name: "Neck Fan"})
	require.NoError(t, err)
	c, err := normalizer.NormalizeCompetition(raw)
	require.NoError(t, err)
	assert.True(t, c.StoreCountKnown)
	assert.Equal(t, a.StoreCount, c.StoreCount)
}
