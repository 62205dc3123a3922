// Пакет objstore — хранилище исходных байтов загруженных файлов.
// Ключ объекта — контент-адрес (дайджест + владелец), поэтому запись
// всегда выполняется с overwrite=false: повторная запись того же ключа —
// гонка двух загрузок, а не обновление.
package objstore

import (
	"context"
	"errors"
)

// Ошибки хранилища объектов.
var (
	// ErrConflict — объект с таким ключом уже существует (гонка записи).
	ErrConflict = errors.New("объект уже существует")
	// ErrNotFound — объект не найден.
	ErrNotFound = errors.New("объект не найден")
)

// Store — интерфейс object storage для исходных файлов.
type Store interface {
	// Put записывает объект с семантикой overwrite=false.
	// Если ключ уже занят — ErrConflict.
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Get возвращает байты и Content-Type объекта или ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, string, error)
	// Delete удаляет объекты по ключам. Отсутствующий ключ не считается ошибкой.
	Delete(ctx context.Context, keys ...string) error
	// Exists проверяет наличие объекта.
	Exists(ctx context.Context, key string) (bool, error)
}
