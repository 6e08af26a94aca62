// MIT License
//
// Copyright (c) 2025 Mike Lane
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package webhook

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"testing"
)

func TestValidateSignature(t *testing.T) {
	payload := []byte(`{"action":"created","comment":{"id":1,"body":"command ping"}}`)

	sha1MAC := hmac.New(sha1.New, []byte(testSecret))
	sha1MAC.Write(payload)

	tests := []struct {
		name      string
		payload   []byte
		signature string
		secret    string
		want      bool
	}{
		{
			name:      "valid signature",
			payload:   payload,
			signature: computeSignature(payload, testSecret),
			secret:    testSecret,
			want:      true,
		},
		{
			name:      "signed with another secret",
			payload:   payload,
			signature: computeSignature(payload, "other-secret"),
			secret:    testSecret,
		},
		{
			name:      "tampered payload",
			payload:   []byte(`{"action":"deleted"}`),
			signature: computeSignature(payload, testSecret),
			secret:    testSecret,
		},
		{
			name:      "missing signature",
			payload:   payload,
			signature: "",
			secret:    testSecret,
		},
		{
			name:      "legacy sha1 signature",
			payload:   payload,
			signature: "sha1=" + hex.EncodeToString(sha1MAC.Sum(nil)),
			secret:    testSecret,
		},
		{
			name:      "not hex",
			payload:   payload,
			signature: "sha256=zz",
			secret:    testSecret,
		},
		{
			name:      "empty secret",
			payload:   payload,
			signature: computeSignature(payload, ""),
			secret:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateSignature(tt.payload, tt.signature, tt.secret); got != tt.want {
				t.Errorf("ValidateSignature() = %v, expected %v", got, tt.want)
			}
		})
	}
}
