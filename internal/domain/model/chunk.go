// chunk.go — модели чанков и результатов поиска.
package model

// ChunkMetadata — метаданные чанка в таблице documents (jsonb-колонка metadata).
// Формат полей совместим с рядами, которые пишет LangChain SupabaseVectorStore:
// ключи file_hash / user_id / id.
type ChunkMetadata struct {
	// SequenceID — порядковый номер чанка в документе (с 1)
	SequenceID int `json:"id"`
	// FileHash — дайджест исходного файла
	FileHash string `json:"file_hash"`
	// OwnerID — идентификатор владельца
	OwnerID string `json:"user_id"`
}

// Chunk — фрагмент текста документа, единица эмбеддинга и поиска.
type Chunk struct {
	// Content — текст чанка
	Content string
	// Metadata — привязка к файлу и владельцу
	Metadata ChunkMetadata
}

// ScoredChunk — чанк с оценкой близости к запросу.
// Similarity — косинусная близость в диапазоне [0, 1], больше — ближе.
type ScoredChunk struct {
	Chunk
	Similarity float64
}
