// Copyright 2026 The TenantForms Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logger

import "log/slog"

// Attribute keys shared by every log line of the service.
const (
	KeyRequestID    = "request_id"
	KeyMethod       = "method"
	KeyPath         = "path"
	KeyRemoteAddr   = "remote_addr"
	KeyUserAgent    = "user_agent"
	KeyStatusCode   = "status_code"
	KeyDuration     = "duration_ms"
	KeyUserID       = "user_id"
	KeyRole         = "role"
	KeyTenantID     = "tenant_id"
	KeyFormID       = "form_id"
	KeySubmissionID = "submission_id"
	KeyError        = "error"
	KeyComponent    = "component"
	KeyOperation    = "operation"
)

func RequestID(id string) slog.Attr      { return slog.String(KeyRequestID, id) }
func Method(method string) slog.Attr     { return slog.String(KeyMethod, method) }
func Path(path string) slog.Attr         { return slog.String(KeyPath, path) }
func RemoteAddr(addr string) slog.Attr   { return slog.String(KeyRemoteAddr, addr) }
func UserAgent(ua string) slog.Attr      { return slog.String(KeyUserAgent, ua) }
func StatusCode(code int) slog.Attr      { return slog.Int(KeyStatusCode, code) }
func Duration(ms int64) slog.Attr        { return slog.Int64(KeyDuration, ms) }
func UserID(id string) slog.Attr         { return slog.String(KeyUserID, id) }
func Role(role string) slog.Attr         { return slog.String(KeyRole, role) }
func TenantID(id string) slog.Attr       { return slog.String(KeyTenantID, id) }
func FormID(id string) slog.Attr         { return slog.String(KeyFormID, id) }
func SubmissionID(id string) slog.Attr   { return slog.String(KeySubmissionID, id) }
func Component(name string) slog.Attr    { return slog.String(KeyComponent, name) }
func Operation(op string) slog.Attr      { return slog.String(KeyOperation, op) }
func String(key, value string) slog.Attr { return slog.String(key, value) }

// Error renders err as a string attribute; nil renders as "".
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
