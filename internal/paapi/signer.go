package paapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Signature Version 4 constants for the Product Advertising API.
// Reference: AWS SigV4 key derivation, kDate → kRegion → kService → kSigning.
const (
	signingAlgorithm = "AWS4-HMAC-SHA256"
	serviceName      = "ProductAdvertisingAPI"
	requestSuffix    = "aws4_request"

	// amzDateFormat is ISO-8601 basic: no separators, no milliseconds.
	amzDateFormat  = "20060102T150405Z"
	dateStampLen   = 8
	getItemsTarget = "com.amazon.paapi5.v1.ProductAdvertisingAPIv1.GetItems"
)

// SignedRequest carries everything the transport needs to execute the call.
type SignedRequest struct {
	Authorization string
	AmzDate       string
	Payload       []byte
	Headers       map[string]string
}

// header is one canonical (name, value) pair. The canonical header block and
// the signed-header list are both derived from the same ordered slice so the
// two can never drift out of sync.
type header struct {
	name  string
	value string
}

// Sign computes the SigV4 authorization header for a GetItems call. It is a
// pure computation over its inputs: no network I/O, no clock reads beyond the
// supplied timestamp. The signer is scoped to the GetItems operation; the
// x-amz-target header is fixed and must change if it is ever reused for
// another operation.
//
// body is marshaled as-is; encoding/json emits struct fields in declaration
// order, so callers must pass a struct (not a map) to keep the payload hash
// stable.
func Sign(creds Credentials, region, host, path string, body any, now time.Time) (*SignedRequest, error) {
	if creds.AccessKey == "" || creds.SecretKey == "" {
		return nil, &ConfigError{Reason: "access key and secret key are required for signing"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	payloadHash := hexSHA256(payload)

	amzDate := now.UTC().Format(amzDateFormat)
	dateStamp := amzDate[:dateStampLen]

	headers := []header{
		{"content-encoding", "amz-1.0"},
		{"content-type", "application/json; charset=utf-8"},
		{"host", host},
		{"x-amz-date", amzDate},
		{"x-amz-target", getItemsTarget},
	}

	var block strings.Builder
	names := make([]string, 0, len(headers))
	for _, h := range headers {
		block.WriteString(h.name)
		block.WriteString(":")
		block.WriteString(h.value)
		block.WriteString("\n")
		names = append(names, h.name)
	}
	signedHeaders := strings.Join(names, ";")

	canonicalRequest := strings.Join([]string{
		"POST",
		path,
		"", // empty query string
		block.String(),
		signedHeaders,
		payloadHash,
	}, "\n")

	credentialScope := strings.Join([]string{dateStamp, region, serviceName, requestSuffix}, "/")

	stringToSign := strings.Join([]string{
		signingAlgorithm,
		amzDate,
		credentialScope,
		hexSHA256([]byte(canonicalRequest)),
	}, "\n")

	// HMAC chain: each step's output keys the next. The order and the "AWS4"
	// seed prefix are mandated bit-for-bit by the signature scheme.
	kDate := hmacSHA256([]byte("AWS4"+creds.SecretKey), []byte(dateStamp))
	kRegion := hmacSHA256(kDate, []byte(region))
	kService := hmacSHA256(kRegion, []byte(serviceName))
	kSigning := hmacSHA256(kService, []byte(requestSuffix))
	signature := hex.EncodeToString(hmacSHA256(kSigning, []byte(stringToSign)))

	authorization := fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		signingAlgorithm, creds.AccessKey, credentialScope, signedHeaders, signature)

	headerMap := make(map[string]string, len(headers))
	for _, h := range headers {
		headerMap[h.name] = h.value
	}

	return &SignedRequest{
		Authorization: authorization,
		AmzDate:       amzDate,
		Payload:       payload,
		Headers:       headerMap,
	}, nil
}

func hexSHA256(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func hmacSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}
