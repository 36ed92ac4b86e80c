package api

// Resource is a JSON:API resource object.
type Resource[A any] struct {
	Type       string `json:"type"       yaml:"type"`
	ID         string `json:"id"         yaml:"id"`
	Attributes A      `json:"attributes" yaml:"attributes"`
}

// Document wraps a single resource.
type Document[A any] struct {
	Data Resource[A] `json:"data" yaml:"data"`
}

// CollectionDocument wraps a collection of resources.
type CollectionDocument[A any] struct {
	Data []Resource[A] `json:"data" yaml:"data"`
}

// PingAttributes are the attributes of the ping resource.
type PingAttributes struct {
	Message string `json:"message" yaml:"message"`
}

// PingResponse is the /ping document.
type PingResponse = Document[PingAttributes]

// ResourceTypePing is the JSON:API type of the ping resource.
const ResourceTypePing = "ping"
