package repository

import (
	"errors"
	"strconv"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/solarcare/inverter-service/internal/persistence"
)

// Partition prefixes and sort keys of the single table.
const (
	userPrefix   = "USER#"
	emailPrefix  = "EMAIL#"
	devicePrefix = "DEVICE#"
	serialPrefix = "SERIAL#"
	ticketPrefix = "TICKET#"

	userSort   = "PROFILE"
	deviceSort = "METADATA"
	ticketSort = "DETAILS"
	uniqueSort = "UNIQUE"
)

// ID prefixes for generated identifiers.
const (
	DeviceIDPrefix = "DEV"
	TicketIDPrefix = "TKT"
)

const (
	idAlphabet   = "0123456789abcdefghijklmnopqrstuvwxyz"
	idSuffixSize = 6
)

var (
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrEmailExists is returned when a user with the same email is already registered.
	ErrEmailExists = errors.New("email already exists")
	// ErrSerialExists is returned when a device with the same serial number is registered.
	ErrSerialExists = errors.New("serial number already registered")
	// ErrAlreadyExists is returned when a generated key collides with an existing record.
	ErrAlreadyExists = errors.New("record already exists")
)

// now is swapped in tests.
var now = time.Now

func userKey(userID string) persistence.Key {
	return persistence.Key{PK: userPrefix + userID, SK: userSort}
}

func emailKey(email string) persistence.Key {
	return persistence.Key{PK: emailPrefix + normalizeEmail(email), SK: uniqueSort}
}

func deviceKey(deviceID string) persistence.Key {
	return persistence.Key{PK: devicePrefix + deviceID, SK: deviceSort}
}

func serialKey(serialNo string) persistence.Key {
	return persistence.Key{PK: serialPrefix + strings.TrimSpace(serialNo), SK: uniqueSort}
}

func ticketKey(ticketID string) persistence.Key {
	return persistence.Key{PK: ticketPrefix + ticketID, SK: ticketSort}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewID returns prefix + base36 millisecond timestamp + a short random suffix, uppercased.
func NewID(prefix string) (string, error) {
	suffix, err := gonanoid.Generate(idAlphabet, idSuffixSize)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(prefix + strconv.FormatInt(now().UnixMilli(), 36) + suffix), nil
}

// Timestamp formats t as Unix seconds.
func Timestamp(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}

func timestamp() string {
	return Timestamp(now())
}
