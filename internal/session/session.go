// Пакет session — хранение пользовательской сессии в зашифрованном cookie.
// Токен бэкенда и профиль пользователя шифруются AES-256-GCM, браузер
// хранит только непрозрачный blob.
package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Имя cookie для зашифрованной сессии.
const CookieName = "mycloud_session"

// Максимальный возраст cookie сессии (24 часа).
const CookieMaxAge = 24 * 60 * 60

// Data — данные сессии, хранящиеся в зашифрованном cookie.
type Data struct {
	// Token — токен авторизации бэкенда.
	Token string `json:"token"`
	// UserID — идентификатор пользователя на бэкенде.
	UserID int64 `json:"user_id"`
	// Username — имя пользователя.
	Username string `json:"username"`
	// Email — email пользователя.
	Email string `json:"email"`
	// IsStaff — признак администратора на момент входа.
	// Актуальное значение уточняется у бэкенда при каждом запросе
	// к административным страницам.
	IsStaff bool `json:"is_staff"`
	// IssuedAt — время выдачи сессии (Unix timestamp).
	IssuedAt int64 `json:"issued_at"`
}

// Manager шифрует и дешифрует Data в HTTP cookie через AES-256-GCM.
type Manager struct {
	gcm cipher.AEAD
	// secure — использовать Secure flag для cookie (true для HTTPS).
	secure bool
}

// NewManager создаёт менеджер сессий.
// key — 32-байтовый ключ для AES-256-GCM.
// Если key пустой — генерируется случайный ключ (непостоянный между рестартами).
func NewManager(key string, secure bool) (*Manager, error) {
	var keyBytes []byte

	if key == "" {
		// Автогенерация ключа (32 bytes = AES-256)
		keyBytes = make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, keyBytes); err != nil {
			return nil, fmt.Errorf("ошибка генерации ключа сессии: %w", err)
		}
	} else {
		// Декодируем base64-ключ или используем как raw bytes
		var err error
		keyBytes, err = base64.StdEncoding.DecodeString(key)
		if err != nil || len(keyBytes) != 32 {
			// Если не base64 — хешируем строку до 32 bytes через SHA-256
			// (для удобства конфигурации)
			keyBytes = sha256Key(key)
		}
	}

	block, err := aes.NewCipher(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания GCM: %w", err)
	}

	return &Manager{
		gcm:    gcm,
		secure: secure,
	}, nil
}

// Encrypt шифрует Data и возвращает base64-строку.
func (m *Manager) Encrypt(data *Data) (string, error) {
	plaintext, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации сессии: %w", err)
	}

	// Уникальный nonce для каждого шифрования
	nonce := make([]byte, m.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("ошибка генерации nonce: %w", err)
	}

	// nonce prepended к ciphertext
	ciphertext := m.gcm.Seal(nonce, nonce, plaintext, nil)

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}

// Decrypt дешифрует base64-строку обратно в Data.
func (m *Manager) Decrypt(encrypted string) (*Data, error) {
	ciphertext, err := base64.URLEncoding.DecodeString(encrypted)
	if err != nil {
		return nil, fmt.Errorf("ошибка декодирования base64: %w", err)
	}

	nonceSize := m.gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, errors.New("зашифрованные данные слишком короткие")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := m.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка дешифрования сессии: %w", err)
	}

	var data Data
	if err := json.Unmarshal(plaintext, &data); err != nil {
		return nil, fmt.Errorf("ошибка десериализации сессии: %w", err)
	}

	return &data, nil
}

// Set устанавливает зашифрованный session cookie в ответ.
// IssuedAt проставляется автоматически, если не задан.
func (m *Manager) Set(w http.ResponseWriter, data *Data) error {
	if data.IssuedAt == 0 {
		data.IssuedAt = time.Now().Unix()
	}

	encrypted, err := m.Encrypt(data)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    encrypted,
		Path:     "/",
		MaxAge:   CookieMaxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Get извлекает и дешифрует Data из cookie запроса.
// Возвращает nil, nil если cookie отсутствует.
func (m *Manager) Get(r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, nil
		}
		return nil, err
	}

	return m.Decrypt(cookie.Value)
}

// Clear удаляет session cookie из ответа (logout).
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// sha256Key хеширует строковый ключ в 32 bytes через SHA-256.
func sha256Key(key string) []byte {
	h := sha256.Sum256([]byte(key))
	return h[:]
}
