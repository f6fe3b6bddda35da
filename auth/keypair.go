package auth

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const keyPairTokenLifetime = time.Hour

// KeyPairJWT signs a key-pair authentication token for account and user.
func KeyPairJWT(account, user string, key *rsa.PrivateKey, now time.Time) (string, error) {
	fingerprint, err := PublicKeyFingerprint(&key.PublicKey)
	if err != nil {
		return "", err
	}
	qualified := accountLocator(account) + "." + strings.ToUpper(user)
	claims := jwt.RegisteredClaims{
		Issuer:    qualified + "." + fingerprint,
		Subject:   qualified,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(keyPairTokenLifetime)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
}

// PublicKeyFingerprint returns SHA256:<base64 digest of the DER public key>.
func PublicKeyFingerprint(key *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %w", err)
	}
	sum := sha256.Sum256(der)
	return "SHA256:" + base64.StdEncoding.EncodeToString(sum[:]), nil
}

// ParsePrivateKey decodes a PEM encoded PKCS#8 or PKCS#1 RSA key.
func ParsePrivateKey(data []byte, passphrase string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("failed to decode private key: no PEM block")
	}
	der := block.Bytes
	//nolint:staticcheck // legacy encrypted PEM is still produced by openssl -traditional
	if x509.IsEncryptedPEMBlock(block) {
		if passphrase == "" {
			return nil, fmt.Errorf("private key is encrypted but no passphrase was supplied")
		}
		var err error
		if der, err = x509.DecryptPEMBlock(block, []byte(passphrase)); err != nil {
			return nil, fmt.Errorf("failed to decrypt private key: %w", err)
		}
	}
	if block.Type == "ENCRYPTED PRIVATE KEY" {
		return nil, fmt.Errorf("encrypted PKCS#8 keys are not supported, export with openssl pkcs8 -nocrypt")
	}
	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("unsupported private key type %T", key)
		}
		return rsaKey, nil
	}
	key, err := x509.ParsePKCS1PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return key, nil
}

// accountLocator uppercases the account and drops any region or domain suffix.
func accountLocator(account string) string {
	account = strings.TrimSuffix(account, HostSuffix)
	if idx := strings.Index(account, "."); idx != -1 {
		account = account[:idx]
	}
	return strings.ToUpper(account)
}

// tokenExpiry reads the exp claim of a JWT without verifying it.
func tokenExpiry(token string) (time.Time, bool) {
	if strings.Count(token, ".") != 2 {
		return time.Time{}, false
	}
	var claims jwt.MapClaims
	if _, _, err := new(jwt.Parser).ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
