package types

// Attribute is a key/value pair attached to a Response for observers.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Response is returned by the instantiate and execute entry points.
type Response struct {
	Attributes []Attribute `json:"attributes"`
	Data       []byte      `json:"data,omitempty"`
}

// NewResponse returns an empty Response.
func NewResponse() *Response {
	return &Response{}
}

// AddAttribute appends an attribute and returns r for chaining.
func (r *Response) AddAttribute(key, value string) *Response {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: value})
	return r
}

// Attr returns the value of the first attribute named key.
func (r *Response) Attr(key string) (string, bool) {
	for _, a := range r.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// KeyValues flattens the attributes into alternating keys and values.
func (r *Response) KeyValues() []any {
	kv := make([]any, 0, 2*len(r.Attributes))
	for _, a := range r.Attributes {
		kv = append(kv, a.Key, a.Value)
	}
	return kv
}
