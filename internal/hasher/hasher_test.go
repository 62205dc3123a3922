package hasher

import "testing"

// TestSum_Deterministic проверяет детерминированность дайджеста.
func TestSum_Deterministic(t *testing.T) {
	data := []byte("одно и то же содержимое")
	if Sum(data) != Sum(data) {
		t.Error("одинаковые байты дали разные дайджесты")
	}
}

// TestSum_KnownValue сверяет дайджест с эталонным значением SHA-256.
func TestSum_KnownValue(t *testing.T) {
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := Sum([]byte("abc")); got != want {
		t.Errorf("Sum(abc) = %s, ожидалось %s", got, want)
	}
}

// TestSum_DiffersOnContent проверяет чувствительность к содержимому.
func TestSum_DiffersOnContent(t *testing.T) {
	if Sum([]byte("a")) == Sum([]byte("b")) {
		t.Error("разные байты дали одинаковый дайджест")
	}
}

// TestObjectKey проверяет формирование ключа объекта: дайджест + владелец.
func TestObjectKey(t *testing.T) {
	key := ObjectKey("deadbeef", "user-1")
	if key != "deadbeefuser-1" {
		t.Errorf("ObjectKey = %s, ожидалось deadbeefuser-1", key)
	}

	// Один файл у разных владельцев — разные ключи
	if ObjectKey("deadbeef", "user-1") == ObjectKey("deadbeef", "user-2") {
		t.Error("ключи разных владельцев совпали")
	}
}
