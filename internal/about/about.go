// Package about holds the static payloads served next to the price lookup.
package about

const (
	ServiceName        = "Tron"
	ServiceDescription = "A Blazingly fast API for the new age"
	ServiceVersion     = "0.1.0"
)

type Greeting struct {
	Message     string `json:"message"`
	Service     string `json:"service"`
	Description string `json:"description"`
}

type Health struct {
	Status string `json:"status"`
}

func Hello() Greeting {
	return Greeting{Message: "Hello, World!", Service: ServiceName, Description: ServiceDescription}
}

func Healthy() Health { return Health{Status: "healthy"} }
