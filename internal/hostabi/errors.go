package hostabi

import "errors"

var (
	// errUnknownVariant is returned when a configured model/light_model id
	// does not match any variant in the embedded model registry.
	errUnknownVariant = errors.New("hostabi: unknown model variant")

	// errNoProviderFactory is returned by Init when the host did not supply
	// a ProviderFactory but the configured strategy requires loading a
	// model.
	errNoProviderFactory = errors.New("hostabi: no provider factory configured")
)
