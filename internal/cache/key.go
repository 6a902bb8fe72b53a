package cache

import (
	"encoding/json"
	"fmt"
)

// Tag agrupa resultados cacheados que se invalidan juntos.
type Tag string

// Key identifica un resultado por endpoint y argumentos normalizados.
type Key struct {
	Endpoint string
	Args     string
}

// NewKey normaliza los argumentos como JSON para que valores iguales
// produzcan la misma clave.
func NewKey(endpoint string, args ...any) Key {
	if len(args) == 0 {
		return Key{Endpoint: endpoint}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return Key{Endpoint: endpoint, Args: fmt.Sprintf("%v", args)}
	}
	return Key{Endpoint: endpoint, Args: string(raw)}
}

func (k Key) String() string {
	if k.Args == "" {
		return k.Endpoint
	}
	return k.Endpoint + " " + k.Args
}
