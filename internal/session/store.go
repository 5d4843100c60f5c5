// Package session implementa el almacén de sesiones y mensajes flash del
// portal, respaldado por Redis con un respaldo en memoria cuando Redis no
// está disponible.
package session

import (
	"context"

	"github.com/afc-labs/facturas-service/internal/models"
)

// Store define las operaciones de sesión que usa la capa web. El token es
// opaco para el caller y viaja en la cookie de sesión.
type Store interface {
	// Create abre una sesión nueva y retorna su token
	Create(ctx context.Context) (string, error)
	// Valid indica si el token corresponde a una sesión vigente
	Valid(ctx context.Context, token string) bool
	// Delete cierra la sesión
	Delete(ctx context.Context, token string) error
	// PushFlash encola un mensaje para la siguiente página
	PushFlash(ctx context.Context, token string, flash models.Flash) error
	// PopFlashes retorna y vacía los mensajes pendientes
	PopFlashes(ctx context.Context, token string) ([]models.Flash, error)
}
