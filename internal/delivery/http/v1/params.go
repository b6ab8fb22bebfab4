package v1

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"shiprate-backend/internal/domain"
	"shiprate-backend/pkg/utils"

	"github.com/google/uuid"
)

// queryParams reads typed values out of a query string. The first problem is
// kept and reported by err().
type queryParams struct {
	values url.Values
	first  error
}

func newQueryParams(r *http.Request) *queryParams {
	return &queryParams{values: r.URL.Query()}
}

func (p *queryParams) fail(format string, args ...interface{}) {
	if p.first == nil {
		p.first = domain.InvalidInput(format, args...)
	}
}

func (p *queryParams) err() error {
	return p.first
}

func (p *queryParams) weight() float64 {
	raw := p.values.Get("weight")
	if raw == "" {
		p.fail("weight is required")
		return 0
	}
	w, err := utils.ParseFloat(raw)
	if err != nil {
		p.fail("weight %q is not a number", raw)
	}
	return w
}

func (p *queryParams) destination() domain.DestinationClass {
	raw := p.values.Get("destinationType")
	if raw == "" {
		p.fail("destinationType is required")
		return ""
	}
	d, err := domain.ParseDestinationClass(raw)
	if err != nil && p.first == nil {
		p.first = err
	}
	return d
}

func (p *queryParams) country() string {
	return domain.NormalizeCountryCode(p.values.Get("countryCode"))
}

func (p *queryParams) volume() *int {
	raw := p.values.Get("volume")
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail("volume %q is not an integer", raw)
		return nil
	}
	return &v
}

func (p *queryParams) minMargin() *float64 {
	raw := p.values.Get("minMargin")
	if raw == "" {
		return nil
	}
	m, err := utils.ParseFloat(raw)
	if err != nil {
		p.fail("minMargin %q is not a number", raw)
		return nil
	}
	return &m
}

func (p *queryParams) carrierIDs() []uuid.UUID {
	items := utils.SplitList(p.values.Get("carrierIds"))
	if len(items) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(items))
	for _, s := range items {
		id, err := uuid.Parse(s)
		if err != nil {
			p.fail("carrierIds: %q is not a valid id", s)
			return nil
		}
		ids = append(ids, id)
	}
	return ids
}

func (p *queryParams) serviceNames() []string {
	return utils.SplitList(p.values.Get("serviceTypes"))
}

// at accepts RFC 3339 timestamps and plain dates. Missing means now, which the
// usecase fills in.
func (p *queryParams) at() time.Time {
	raw := p.values.Get("at")
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t
	}
	p.fail("at %q is neither an RFC 3339 timestamp nor a date", raw)
	return time.Time{}
}

func (p *queryParams) flag(name string) bool {
	b, _ := strconv.ParseBool(p.values.Get(name))
	return b
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.PathValue(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.InvalidInput("%s %q is not a valid id", name, raw)
	}
	return id, nil
}
