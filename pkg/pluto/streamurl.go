package pluto

import "strings"

// legacyQuery replaces a template that ends in "?deviceType=", a truncated
// shape produced by an older integration.
const legacyQuery = "deviceType=&deviceMake=&deviceModel=&&deviceVersion=unknown&appVersion=unknown&" +
	"deviceDNT=0&userId=&advertisingId=&app_name=&appName=&buildVersion=&appStoreUrl=&" +
	"architecture=&includeExtendedEvents=false"

// Client identity presented to the streaming edge.
const (
	DefaultDeviceType  = "web"
	DefaultDeviceMake  = "Chrome"
	DefaultDeviceModel = "Chrome"
	DefaultAppName     = "web"
)

// queryPair is one raw "key=value" segment. Segments without "=" and empty
// segments are kept verbatim so serialization reproduces them.
type queryPair struct {
	key   string
	value string
	hasEq bool
}

func (p queryPair) String() string {
	if !p.hasEq {
		return p.key
	}
	return p.key + "=" + p.value
}

// streamQuery is a template split into its parts, with the query kept as an
// ordered multimap of raw segments.
type streamQuery struct {
	base     string
	hasQuery bool
	pairs    []queryPair
	fragment string
}

func parseStreamQuery(template string) *streamQuery {
	q := &streamQuery{base: template}

	if i := strings.IndexByte(q.base, '#'); i >= 0 {
		q.fragment = q.base[i:]
		q.base = q.base[:i]
	}

	i := strings.IndexByte(q.base, '?')
	if i < 0 {
		return q
	}

	raw := q.base[i+1:]
	q.base = q.base[:i]
	q.hasQuery = true
	q.pairs = parsePairs(raw)

	return q
}

func parsePairs(raw string) []queryPair {
	segments := strings.Split(raw, "&")
	pairs := make([]queryPair, 0, len(segments))
	for _, seg := range segments {
		key, value, hasEq := strings.Cut(seg, "=")
		pairs = append(pairs, queryPair{key: key, value: value, hasEq: hasEq})
	}
	return pairs
}

// fillEmpty sets value on every segment named key whose value is empty.
func (q *streamQuery) fillEmpty(key, value string) {
	for i := range q.pairs {
		p := &q.pairs[i]
		if p.key == key && p.hasEq && p.value == "" {
			p.value = value
		}
	}
}

func (q *streamQuery) String() string {
	if !q.hasQuery {
		return q.base + q.fragment
	}

	segments := make([]string, len(q.pairs))
	for i, p := range q.pairs {
		segments[i] = p.String()
	}
	return q.base + "?" + strings.Join(segments, "&") + q.fragment
}

// ComposeStreamURL fills the client placeholders of a stitched playback URL
// template. Rewrites run in a fixed order:
//
//  1. a template ending in "?deviceType=" has that pair expanded to the legacy parameter block
//  2. empty deviceId and sid take deviceID and sessionID
//  3. empty deviceType, deviceMake, deviceModel and appName take the web client defaults
//
// Only parameters with an empty value are touched; values already present in
// the template are kept.
func ComposeStreamURL(template, deviceID, sessionID string) string {
	if template == "" {
		return ""
	}

	// only the trailing pair is expanded; anything before it stays
	if strings.HasSuffix(template, "?deviceType=") {
		template = strings.TrimSuffix(template, "deviceType=") + legacyQuery
	}

	q := parseStreamQuery(template)

	q.fillEmpty("deviceId", deviceID)
	q.fillEmpty("sid", sessionID)

	q.fillEmpty("deviceType", DefaultDeviceType)
	q.fillEmpty("deviceMake", DefaultDeviceMake)
	q.fillEmpty("deviceModel", DefaultDeviceModel)
	q.fillEmpty("appName", DefaultAppName)

	return q.String()
}
