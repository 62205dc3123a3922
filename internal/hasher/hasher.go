// Пакет hasher — контент-адресация загружаемых файлов.
// SHA-256 дайджест используется как ключ дедупликации и как часть
// составного ключа объекта в object storage (hash + ownerID).
package hasher

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum возвращает hex-представление SHA-256 дайджеста содержимого.
// Чистая функция: одинаковые байты всегда дают одинаковый дайджест.
func Sum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ObjectKey формирует ключ объекта в object storage: дайджест + владелец.
// Один и тот же файл у разных владельцев хранится под разными ключами.
func ObjectKey(fileHash, ownerID string) string {
	return fileHash + ownerID
}
