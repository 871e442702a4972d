// Package query turns request query strings into MongoDB find options.
//
// A Features value is applied in a fixed order: Filter, Sort, LimitFields,
// Paginate. Every stage returns a new value and nothing touches the store
// until a repository runs the resulting criteria and options.
package query

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/tour-booking/internal/model"
)

const (
	DefaultPage  = 1
	DefaultLimit = 100
	DefaultSort  = "-createdAt"
)

// reserved parameters drive sorting, projection and paging and are never
// used as filter criteria.
var reserved = map[string]bool{"page": true, "sort": true, "limit": true, "fields": true}

// comparison operators translated to their mongo form; any other bracketed
// operator is passed through as written.
var comparison = map[string]string{"gte": "$gte", "gt": "$gt", "lte": "$lte", "lt": "$lt"}

// field[op]
var bracketKey = regexp.MustCompile(`^([^\[\]]+)\[([^\[\]]+)\]$`)

// Features carries the derived query description for one request.
type Features struct {
	params     url.Values
	criteria   bson.M
	sort       bson.D
	projection bson.D
	fields     []string
	skip       int64
	limit      int64
}

// New starts a pipeline over a copy of the request parameters.
func New(params url.Values) Features {
	cp := make(url.Values, len(params))
	for k, v := range params {
		cp[k] = append([]string(nil), v...)
	}
	return Features{params: cp, criteria: bson.M{}}
}

// Apply runs every stage in order.
func Apply(params url.Values) Features {
	return New(params).Filter().Sort().LimitFields().Paginate()
}

// Filter derives equality and range criteria from all non-reserved
// parameters. `price[gte]=500` becomes {price: {$gte: 500}}; repeated plain
// keys become $in. Keys beginning with '$' are dropped.
func (f Features) Filter() Features {
	criteria := bson.M{}
	for k, v := range f.criteria {
		criteria[k] = v
	}
	for key, values := range f.params {
		if reserved[key] || strings.HasPrefix(key, "$") || len(values) == 0 {
			continue
		}
		if m := bracketKey.FindStringSubmatch(key); m != nil {
			field, op := m[1], m[2]
			if reserved[field] || strings.HasPrefix(field, "$") || strings.HasPrefix(op, "$") {
				continue
			}
			if mongoOp, ok := comparison[op]; ok {
				op = mongoOp
			}
			sub, _ := criteria[field].(bson.M)
			if sub == nil {
				sub = bson.M{}
			}
			sub[op] = Coerce(values[len(values)-1])
			criteria[field] = sub
			continue
		}
		if len(values) == 1 {
			criteria[key] = Coerce(values[0])
			continue
		}
		in := make(bson.A, 0, len(values))
		for _, v := range values {
			in = append(in, Coerce(v))
		}
		criteria[key] = bson.M{"$in": in}
	}
	f.criteria = criteria
	return f
}

// Where adds a fixed criterion, e.g. the tour id of a nested review route.
func (f Features) Where(field string, value any) Features {
	criteria := make(bson.M, len(f.criteria)+1)
	for k, v := range f.criteria {
		criteria[k] = v
	}
	criteria[field] = value
	f.criteria = criteria
	return f
}

// Sort orders by a comma separated field list; a leading '-' sorts
// descending. Without a sort parameter the newest documents come first.
func (f Features) Sort() Features {
	list := f.last("sort")
	if list == "" {
		list = DefaultSort
	}
	var sort bson.D
	for _, field := range splitList(list) {
		dir := 1
		if strings.HasPrefix(field, "-") {
			dir = -1
			field = strings.TrimPrefix(field, "-")
		}
		if field == "" {
			continue
		}
		sort = append(sort, bson.E{Key: field, Value: dir})
	}
	f.sort = sort
	return f
}

// LimitFields projects the listed fields. Without a fields parameter every
// field except the internal version key is returned.
func (f Features) LimitFields() Features {
	list := f.last("fields")
	if list == "" {
		f.projection = bson.D{{Key: model.VersionField, Value: 0}}
		f.fields = nil
		return f
	}
	var projection bson.D
	var fields []string
	for _, field := range splitList(list) {
		if strings.HasPrefix(field, "-") {
			projection = append(projection, bson.E{Key: strings.TrimPrefix(field, "-"), Value: 0})
			continue
		}
		projection = append(projection, bson.E{Key: field, Value: 1})
		fields = append(fields, field)
	}
	f.projection = projection
	f.fields = fields
	return f
}

// Paginate computes skip and limit from page (1-based, default 1) and
// limit (default 100). A page past the end simply yields no documents;
// skip saturates instead of overflowing.
func (f Features) Paginate() Features {
	page := int64(positiveInt(f.last("page"), DefaultPage))
	limit := int64(positiveInt(f.last("limit"), DefaultLimit))
	if page-1 > math.MaxInt64/limit {
		f.skip = math.MaxInt64
	} else {
		f.skip = (page - 1) * limit
	}
	f.limit = limit
	return f
}

func (f Features) Criteria() bson.M { return f.criteria }
func (f Features) SortSpec() bson.D { return f.sort }
func (f Features) Projection() bson.D { return f.projection }
func (f Features) Skip() int64 { return f.skip }
func (f Features) Limit() int64 { return f.limit }
func (f Features) Params() url.Values { return f.params }

// Fields lists the explicitly included fields, nil when all are returned.
func (f Features) Fields() []string { return f.fields }

// FindOptions converts the pipeline state into driver options.
func (f Features) FindOptions() *options.FindOptions {
	opts := options.Find()
	if len(f.sort) > 0 {
		opts.SetSort(f.sort)
	}
	if len(f.projection) > 0 {
		opts.SetProjection(f.projection)
	}
	if f.skip > 0 {
		opts.SetSkip(f.skip)
	}
	if f.limit > 0 {
		opts.SetLimit(f.limit)
	}
	return opts
}

func (f Features) last(key string) string {
	v := f.params[key]
	if len(v) == 0 {
		return ""
	}
	return strings.TrimSpace(v[len(v)-1])
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func positiveInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Coerce converts a query string value into the bson type it most likely
// represents: object ids, integers, floats, booleans and dates, otherwise
// the string itself.
func Coerce(s string) any {
	if id, err := primitive.ObjectIDFromHex(s); err == nil {
		return id
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return s
}
