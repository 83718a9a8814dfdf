package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Поддерживаемые алгоритмы хеширования паролей
const (
	AlgorithmArgon2id = "argon2id"
	AlgorithmBcrypt   = "bcrypt"
)

// Параметры Argon2id по умолчанию
const (
	// Argon2Time - количество итераций (time cost)
	Argon2Time = 1
	// Argon2Memory - объем памяти в KB (64MB = 64*1024 KB)
	Argon2Memory = 64 * 1024
	// Argon2Threads - количество параллельных потоков
	Argon2Threads = 4
	// Argon2KeyLen - длина выходного ключа в байтах
	Argon2KeyLen = 32
	// SaltSize - размер соли в байтах
	SaltSize = 16
	// BcryptMaxInput - bcrypt учитывает только первые 72 байта пароля
	BcryptMaxInput = 72
)

var (
	// ErrEmptyPassword возвращается при попытке хешировать пустой пароль
	ErrEmptyPassword = errors.New("password cannot be empty")
	// ErrUnknownAlgorithm возвращается для неподдерживаемого алгоритма
	ErrUnknownAlgorithm = errors.New("unknown password hashing algorithm")
	// ErrInvalidHash возвращается, если сохраненный хеш не удалось разобрать
	ErrInvalidHash = errors.New("invalid password hash format")
)

// Argon2Params параметры Argon2id
type Argon2Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
}

// DefaultArgon2Params возвращает параметры Argon2id по умолчанию
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Time:    Argon2Time,
		Memory:  Argon2Memory,
		Threads: Argon2Threads,
		KeyLen:  Argon2KeyLen,
	}
}

// PasswordHasher хеширует и проверяет пароли пользователей.
// Каждый хеш содержит собственную случайную соль и параметры алгоритма,
// поэтому Verify работает для хешей любого поддерживаемого алгоритма,
// независимо от того, какой алгоритм выбран для новых паролей.
type PasswordHasher struct {
	algorithm  string
	argon2     Argon2Params
	bcryptCost int
}

// Option настраивает PasswordHasher
type Option func(*PasswordHasher)

// WithArgon2Params задает параметры Argon2id
func WithArgon2Params(p Argon2Params) Option {
	return func(h *PasswordHasher) {
		h.argon2 = p
	}
}

// WithBcryptCost задает cost для bcrypt
func WithBcryptCost(cost int) Option {
	return func(h *PasswordHasher) {
		h.bcryptCost = cost
	}
}

// NewPasswordHasher создает hasher для указанного алгоритма
func NewPasswordHasher(algorithm string, opts ...Option) (*PasswordHasher, error) {
	switch algorithm {
	case AlgorithmArgon2id, AlgorithmBcrypt:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}

	h := &PasswordHasher{
		algorithm:  algorithm,
		argon2:     DefaultArgon2Params(),
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(h)
	}

	if h.bcryptCost < bcrypt.MinCost || h.bcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	return h, nil
}

// Algorithm возвращает алгоритм, используемый для новых хешей
func (h *PasswordHasher) Algorithm() string {
	return h.algorithm
}

// Hash хеширует пароль со свежей солью
func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	if h.algorithm == AlgorithmBcrypt {
		hash, err := bcrypt.GenerateFromPassword(bcryptInput(password), h.bcryptCost)
		if err != nil {
			return "", fmt.Errorf("failed to hash password with bcrypt: %w", err)
		}
		return string(hash), nil
	}

	salt, err := GenerateSalt()
	if err != nil {
		return "", err
	}

	p := h.argon2
	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)

	// Формат PHC: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify сравнивает пароль с сохраненным хешем.
// Возвращает false без ошибки, если пароль не совпадает.
func (h *PasswordHasher) Verify(password, encoded string) (bool, error) {
	switch {
	case strings.HasPrefix(encoded, "$argon2id$"):
		return verifyArgon2id(password, encoded)
	case strings.HasPrefix(encoded, "$2a$"), strings.HasPrefix(encoded, "$2b$"), strings.HasPrefix(encoded, "$2y$"):
		err := bcrypt.CompareHashAndPassword([]byte(encoded), bcryptInput(password))
		if err == nil {
			return true, nil
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	default:
		return false, ErrInvalidHash
	}
}

// bcryptInput возвращает пароль в виде, пригодном для bcrypt.
// Пароль длиннее BcryptMaxInput сжимается в base64(SHA-256): 44 байта,
// и пароли с общим 72-байтным префиксом остаются различимыми.
func bcryptInput(password string) []byte {
	if len(password) <= BcryptMaxInput {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

func verifyArgon2id(password, encoded string) (bool, error) {
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, hash
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return false, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	if version != argon2.Version {
		return false, fmt.Errorf("%w: unsupported argon2 version %d", ErrInvalidHash, version)
	}

	var p Argon2Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}

	got := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, uint32(len(want)))

	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// GenerateSalt генерирует криптографически случайную соль
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}
