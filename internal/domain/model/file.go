// Пакет model — доменные модели DocQA Module.
// FileRecord — маппинг таблицы uploaded_files.
package model

import "time"

// FileRecord — запись загруженного файла в таблице uploaded_files.
// Уникальность записи — пара (FileHash, OwnerID): один и тот же файл
// у разных владельцев хранится независимо.
type FileRecord struct {
	// FileID — UUID записи (задаётся при загрузке)
	FileID string
	// FileName — оригинальное имя файла
	FileName string
	// FileHash — SHA-256 дайджест содержимого (hex)
	FileHash string
	// OwnerID — идентификатор владельца (sub из JWT или user_id запроса)
	OwnerID string
	// CreatedAt — время создания записи
	CreatedAt time.Time
}
