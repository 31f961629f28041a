package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestEncryptDecryptRoundTrip проверяет шифрование и дешифрование Data.
func TestEncryptDecryptRoundTrip(t *testing.T) {
	m, err := NewManager("", false)
	if err != nil {
		t.Fatalf("Ошибка создания Manager: %v", err)
	}

	original := &Data{
		Token:    "drf-token-12345",
		UserID:   7,
		Username: "ivan",
		Email:    "ivan@example.com",
		IsStaff:  true,
		IssuedAt: 1735689600,
	}

	encrypted, err := m.Encrypt(original)
	if err != nil {
		t.Fatalf("Ошибка шифрования: %v", err)
	}
	if encrypted == "" {
		t.Fatal("Зашифрованная строка пустая")
	}

	decrypted, err := m.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("Ошибка дешифрования: %v", err)
	}

	if decrypted.Token != original.Token {
		t.Errorf("Token: want %q, got %q", original.Token, decrypted.Token)
	}
	if decrypted.UserID != original.UserID {
		t.Errorf("UserID: want %d, got %d", original.UserID, decrypted.UserID)
	}
	if decrypted.Username != original.Username {
		t.Errorf("Username: want %q, got %q", original.Username, decrypted.Username)
	}
	if decrypted.Email != original.Email {
		t.Errorf("Email: want %q, got %q", original.Email, decrypted.Email)
	}
	if decrypted.IsStaff != original.IsStaff {
		t.Errorf("IsStaff: want %v, got %v", original.IsStaff, decrypted.IsStaff)
	}
	if decrypted.IssuedAt != original.IssuedAt {
		t.Errorf("IssuedAt: want %d, got %d", original.IssuedAt, decrypted.IssuedAt)
	}
}

// TestManagerWithStringKey проверяет инициализацию с произвольной строкой-ключом.
func TestManagerWithStringKey(t *testing.T) {
	m, err := NewManager("my-secret-key-for-testing", false)
	if err != nil {
		t.Fatalf("Ошибка создания Manager с string-ключом: %v", err)
	}

	data := &Data{Token: "token123", Username: "user"}

	encrypted, err := m.Encrypt(data)
	if err != nil {
		t.Fatalf("Ошибка шифрования: %v", err)
	}

	decrypted, err := m.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("Ошибка дешифрования: %v", err)
	}

	if decrypted.Token != data.Token {
		t.Errorf("Token: want %q, got %q", data.Token, decrypted.Token)
	}
}

// TestDecryptWithWrongKey проверяет, что дешифрование чужим ключом не работает.
func TestDecryptWithWrongKey(t *testing.T) {
	m1, _ := NewManager("key-one", false)
	m2, _ := NewManager("key-two", false)

	encrypted, err := m1.Encrypt(&Data{Token: "secret"})
	if err != nil {
		t.Fatalf("Ошибка шифрования: %v", err)
	}

	if _, err := m2.Decrypt(encrypted); err == nil {
		t.Error("Ожидалась ошибка при дешифровании чужим ключом")
	}
}

// TestCookieSetAndGet проверяет установку и извлечение cookie.
func TestCookieSetAndGet(t *testing.T) {
	m, _ := NewManager("test-key", false)

	data := &Data{
		Token:    "drf-token-123",
		UserID:   7,
		Username: "ivan",
	}

	w := httptest.NewRecorder()
	if err := m.Set(w, data); err != nil {
		t.Fatalf("Ошибка установки cookie: %v", err)
	}

	resp := w.Result()
	cookies := resp.Cookies()
	if len(cookies) == 0 {
		t.Fatal("Cookie не установлен")
	}

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookies[0])

	got, err := m.Get(req)
	if err != nil {
		t.Fatalf("Ошибка чтения сессии из cookie: %v", err)
	}
	if got == nil {
		t.Fatal("Сессия не найдена")
	}
	if got.Token != data.Token {
		t.Errorf("Token: want %q, got %q", data.Token, got.Token)
	}
	if got.Username != data.Username {
		t.Errorf("Username: want %q, got %q", data.Username, got.Username)
	}
	if got.IssuedAt == 0 {
		t.Error("IssuedAt должен проставляться автоматически")
	}

	cookie := cookies[0]
	if cookie.Name != CookieName {
		t.Errorf("Cookie name: want %q, got %q", CookieName, cookie.Name)
	}
	if cookie.Path != "/" {
		t.Errorf("Cookie path: want %q, got %q", "/", cookie.Path)
	}
	if !cookie.HttpOnly {
		t.Error("Cookie должен быть HttpOnly")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Error("Cookie должен быть SameSite=Lax")
	}
}

// TestCookieMissing проверяет, что отсутствие cookie возвращает nil, nil.
func TestCookieMissing(t *testing.T) {
	m, _ := NewManager("test-key", false)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	data, err := m.Get(req)
	if err != nil {
		t.Fatalf("Ожидалось nil error, получено: %v", err)
	}
	if data != nil {
		t.Error("Ожидалось nil data при отсутствии cookie")
	}
}

// TestClearCookie проверяет очистку session cookie.
func TestClearCookie(t *testing.T) {
	m, _ := NewManager("test-key", false)

	w := httptest.NewRecorder()
	m.Clear(w)

	resp := w.Result()
	cookies := resp.Cookies()
	if len(cookies) == 0 {
		t.Fatal("Cookie очистки не установлен")
	}

	cookie := cookies[0]
	if cookie.MaxAge != -1 {
		t.Errorf("MaxAge: want -1, got %d", cookie.MaxAge)
	}
	if cookie.Value != "" {
		t.Error("Value должен быть пустым")
	}
}
