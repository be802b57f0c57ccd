// Package backup 负责备份文件的编解码：identifier → secret 记录，
// blob 以 base64 存放，保证任意字节都能无损往返。
//
// 两种 store 的记录形态不同，因此各自有独立的文件名与 schema，互不兼容。
package backup

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/zx06/keyreset/internal/errors"
	"github.com/zx06/keyreset/internal/secret"
)

// Snapshot 以 Codec.Key(id) 为键。某个 identifier 不存在就是不出现在 map 中。
type Snapshot map[string]secret.Record

// Keys 返回排序后的键，便于确定性输出。
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Codec 描述一种平台的备份文件格式。
type Codec interface {
	Kind() secret.Kind
	FileName() string
	Key(id secret.Identifier) string
	Encode(snap Snapshot) ([]byte, error)
	Decode(data []byte) (Snapshot, *errors.XError)
	Schema() *jsonschema.Schema
}

// ForKind 返回 store 形态对应的 Codec。
func ForKind(kind secret.Kind) (Codec, error) {
	switch kind {
	case secret.KindCredential:
		return CredentialCodec{}, nil
	case secret.KindCollection:
		return CollectionCodec{}, nil
	default:
		return nil, fmt.Errorf("no backup codec for store kind %q", kind)
	}
}

// ---- Credential Manager ----

// CredentialCodec: {"<service>:<account>": {"blob_b64": "...", "username": "..."}}
type CredentialCodec struct{}

type credentialEntry struct {
	BlobB64  *string `json:"blob_b64"`
	UserName *string `json:"username,omitempty"`
}

func (CredentialCodec) Kind() secret.Kind { return secret.KindCredential }

func (CredentialCodec) FileName() string { return "keychain-win-backup.json" }

func (CredentialCodec) Key(id secret.Identifier) string { return id.Target() }

func (CredentialCodec) Encode(snap Snapshot) ([]byte, error) {
	out := make(map[string]credentialEntry, len(snap))
	for key, rec := range snap {
		b64 := base64.StdEncoding.EncodeToString(rec.Blob)
		user := rec.UserName
		out[key] = credentialEntry{BlobB64: &b64, UserName: &user}
	}
	return json.Marshal(out)
}

func (c CredentialCodec) Decode(data []byte) (Snapshot, *errors.XError) {
	if xe := validate(c.Schema(), data); xe != nil {
		return nil, xe
	}
	var in map[string]credentialEntry
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, errors.Wrap(errors.CodeBackupInvalid, "invalid backup file", nil, err)
	}
	snap := make(Snapshot, len(in))
	for key, e := range in {
		blob, xe := decodeBlob(key, "blob_b64", e.BlobB64)
		if xe != nil {
			return nil, xe
		}
		user := secret.DefaultAccount
		if e.UserName != nil {
			user = *e.UserName
		}
		snap[key] = secret.Record{Blob: blob, UserName: user}
	}
	return snap, nil
}

func (CredentialCodec) Schema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Title:       "keychain-win-backup",
		Description: "Credential Manager backup: TargetName -> generic credential",
		Type:        "object",
		AdditionalProperties: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"blob_b64"},
			Properties: map[string]*jsonschema.Schema{
				"blob_b64": {Type: "string", Description: "CredentialBlob, standard base64"},
				"username": {Type: "string", Description: "UserName; defaults to parentCollection"},
			},
		},
	}
}

// ---- Secret Service ----

// CollectionCodec: {"<service>": {"secret_b64": "...", "label": "..."}}
// username 固定为 secret.DefaultAccount，不写入文件。
type CollectionCodec struct{}

type collectionEntry struct {
	SecretB64 *string `json:"secret_b64"`
	Label     *string `json:"label,omitempty"`
}

func (CollectionCodec) Kind() secret.Kind { return secret.KindCollection }

func (CollectionCodec) FileName() string { return "keychain-backup.json" }

func (CollectionCodec) Key(id secret.Identifier) string { return id.Service }

func (CollectionCodec) Encode(snap Snapshot) ([]byte, error) {
	out := make(map[string]collectionEntry, len(snap))
	for key, rec := range snap {
		b64 := base64.StdEncoding.EncodeToString(rec.Blob)
		label := rec.Label
		out[key] = collectionEntry{SecretB64: &b64, Label: &label}
	}
	return json.Marshal(out)
}

func (c CollectionCodec) Decode(data []byte) (Snapshot, *errors.XError) {
	if xe := validate(c.Schema(), data); xe != nil {
		return nil, xe
	}
	var in map[string]collectionEntry
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, errors.Wrap(errors.CodeBackupInvalid, "invalid backup file", nil, err)
	}
	snap := make(Snapshot, len(in))
	for key, e := range in {
		blob, xe := decodeBlob(key, "secret_b64", e.SecretB64)
		if xe != nil {
			return nil, xe
		}
		label := secret.DefaultLabel(secret.Identifier{Service: key, Account: secret.DefaultAccount})
		if e.Label != nil && *e.Label != "" {
			label = *e.Label
		}
		snap[key] = secret.Record{Blob: blob, Label: label}
	}
	return snap, nil
}

func (CollectionCodec) Schema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Title:       "keychain-backup",
		Description: "Secret Service backup: service attribute -> item",
		Type:        "object",
		AdditionalProperties: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"secret_b64"},
			Properties: map[string]*jsonschema.Schema{
				"secret_b64": {Type: "string", Description: "item secret, standard base64"},
				"label":      {Type: "string", Description: "item label"},
			},
		},
	}
}

// ---- helpers ----

func decodeBlob(key, field string, v *string) ([]byte, *errors.XError) {
	if v == nil {
		return nil, errors.New(errors.CodeBackupInvalid, "backup entry is missing "+field, map[string]any{"id": key})
	}
	blob, err := base64.StdEncoding.DecodeString(*v)
	if err != nil {
		return nil, errors.Wrap(errors.CodeBackupInvalid, "backup entry has invalid base64", map[string]any{"id": key, "field": field}, err)
	}
	if blob == nil {
		blob = []byte{}
	}
	return blob, nil
}

// validate 在解码前用 JSON Schema 检查文件结构，拒绝把结构错误的内容写回 store。
func validate(schema *jsonschema.Schema, data []byte) *errors.XError {
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return errors.Wrap(errors.CodeBackupInvalid, "backup file is not valid JSON", nil, err)
	}
	resolved, err := schema.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return errors.Wrap(errors.CodeInternal, "invalid backup schema", nil, err)
	}
	if err := resolved.Validate(instance); err != nil {
		return errors.Wrap(errors.CodeBackupInvalid, "backup file does not match schema", nil, err)
	}
	return nil
}
