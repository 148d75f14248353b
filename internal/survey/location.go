package survey

import (
	"context"

	"github.com/urbanbyte/pesquisa/internal/directory"
)

// Locator é a capacidade externa de geolocalização. Implementações nunca
// falham: quando as coordenadas não estão disponíveis devolvem o par
// sentinela "N/A".
type Locator interface {
	Locate(ctx context.Context) directory.Location
}

// LocatorFunc adapta uma função a Locator.
type LocatorFunc func(ctx context.Context) directory.Location

// Locate implementa Locator.
func (f LocatorFunc) Locate(ctx context.Context) directory.Location {
	return f(ctx)
}

// Unlocated devolve sempre o sentinela. É o fallback quando o cliente não
// informa coordenadas.
func Unlocated() Locator {
	return LocatorFunc(func(context.Context) directory.Location {
		return directory.UnknownLocation()
	})
}

// FixedLocator devolve sempre as coordenadas informadas. A camada HTTP usa
// este adaptador para repassar a posição reportada pelo dispositivo.
func FixedLocator(loc directory.Location) Locator {
	return LocatorFunc(func(context.Context) directory.Location {
		return loc
	})
}
