package conversation

import (
	"dashgate/internal/models"
	"dashgate/internal/structures"
	"dashgate/internal/testutil"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNormalizer() (*Normalizer, *testutil.MockLogger) {
	conf := &structures.Config{
		Conversation: structures.ConversationConfig{
			SellerIndicators:  []string{"旗舰店", "客服", "Shop", "official"},
			ProductLinkTypes:  []string{"item", "goods"},
			ProductLinkPrefix: []string{"我要咨询的商品：", "I want to ask about this item:"},
		},
	}
	logger := &testutil.MockLogger{}
	return NewNormalizer(conf, logger), logger
}

func TestNormalize_FallbackChain(t *testing.T) {
	n, _ := newNormalizer()

	got := n.Normalize(json.RawMessage(`[{"content":"hi","sender":"Seller"}]`))

	require.Len(t, got, 1)
	assert.Equal(t, "hi", got[0].Content)
	assert.Equal(t, models.RoleSeller, got[0].Role)
	assert.Nil(t, got[0].Timestamp)
	assert.Equal(t, models.MessageTypeText, got[0].MessageType)
}

func TestNormalize_FirstDefinedWins(t *testing.T) {
	n, _ := newNormalizer()

	got := n.Normalize(json.RawMessage(`[
		{"msg":null,"content":"from content","message":"from message","gmtCreated":null,"created_at":"2024-05-01 10:00:00","userNickFrom":"买家小王"},
		{"msg":"","content":"ignored"},
		{"message":"only message","time":1714557600}
	]`))

	require.Len(t, got, 3)
	assert.Equal(t, "from content", got[0].Content)
	require.NotNil(t, got[0].Timestamp)
	assert.Equal(t, "2024-05-01 10:00:00", *got[0].Timestamp)
	assert.Equal(t, models.RoleBuyer, got[0].Role)

	assert.Equal(t, "", got[1].Content)

	assert.Equal(t, "only message", got[2].Content)
	require.NotNil(t, got[2].Timestamp)
	assert.Equal(t, "1714557600", *got[2].Timestamp)
}

func TestNormalize_NonStringValuesCoerced(t *testing.T) {
	n, _ := newNormalizer()

	got := n.Normalize(json.RawMessage(`[{"msg":42,"type":7,"sender":true}]`))

	require.Len(t, got, 1)
	assert.Equal(t, "42", got[0].Content)
	assert.Equal(t, "7", got[0].MessageType)
	assert.Equal(t, models.RoleBuyer, got[0].Role)
}

func TestNormalize_ShapePrecedence(t *testing.T) {
	n, _ := newNormalizer()

	got := n.Normalize(json.RawMessage(`{"contents":[{"msg":"A"}],"messages":[{"msg":"B"}]}`))
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Content)

	got = n.Normalize(json.RawMessage(`{"contents":"not a list","messages":[{"msg":"B"}]}`))
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].Content)

	got = n.Normalize(json.RawMessage(`[{"msg":"C"},{"msg":"D"}]`))
	require.Len(t, got, 2)
	assert.Equal(t, "C", got[0].Content)
	assert.Equal(t, "D", got[1].Content)
}

func TestNormalize_UnknownShapeIsEmpty(t *testing.T) {
	n, _ := newNormalizer()

	for _, raw := range []string{`{"total":3}`, `"text"`, `null`, ``, `{broken`} {
		got := n.Normalize(json.RawMessage(raw))
		assert.NotNil(t, got, raw)
		assert.Empty(t, got, raw)
	}
}

func TestNormalize_RoleInference(t *testing.T) {
	n, _ := newNormalizer()

	cases := []struct {
		sender string
		want   models.Role
	}{
		{"seller", models.RoleSeller},
		{"Assistant", models.RoleSeller},
		{"某某旗舰店", models.RoleSeller},
		{"客服小美", models.RoleSeller},
		{"Happy SHOP", models.RoleSeller},
		{"AI", models.RoleAI},
		{"ai helper", models.RoleBuyer},
		{"tb_buyer_001", models.RoleBuyer},
		{"", models.RoleBuyer},
	}
	for _, tc := range cases {
		raw, err := json.Marshal([]map[string]string{{"msg": "x", "sender": tc.sender}})
		require.NoError(t, err)
		got := n.Normalize(raw)
		require.Len(t, got, 1)
		assert.Equal(t, tc.want, got[0].Role, tc.sender)
	}
}

func TestNormalize_ProductLinkPrefixStripped(t *testing.T) {
	n, _ := newNormalizer()

	got := n.Normalize(json.RawMessage(`[
		{"msg":"我要咨询的商品：https://item.example.com/1","type":"item"},
		{"msg":"I want to ask about this item: https://x/2","type":"goods"},
		{"msg":"我要咨询的商品：kept","type":"text"}
	]`))

	require.Len(t, got, 3)
	assert.Equal(t, "https://item.example.com/1", got[0].Content)
	assert.Equal(t, "item", got[0].MessageType)
	assert.Equal(t, "https://x/2", got[1].Content)
	assert.Equal(t, "我要咨询的商品：kept", got[2].Content)
}

func TestNormalize_BadRecordBecomesErrorEntry(t *testing.T) {
	n, logger := newNormalizer()

	got := n.Normalize(json.RawMessage(`{"contents":[{"msg":"first"},"oops",null,{"msg":"last"}]}`))

	require.Len(t, got, 4)
	assert.Equal(t, "first", got[0].Content)
	assert.Equal(t, models.MessageTypeError, got[1].MessageType)
	assert.Equal(t, models.MessageTypeError, got[2].MessageType)
	assert.Nil(t, got[1].Timestamp)
	assert.Equal(t, "last", got[3].Content)
	assert.Equal(t, 2, logger.Count("warn"))
}

func TestNormalize_OrderPreserved(t *testing.T) {
	n, _ := newNormalizer()

	got := n.Normalize(json.RawMessage(`{"messages":[
		{"msg":"3","gmtCreated":"2024-01-03"},
		{"msg":"1","gmtCreated":"2024-01-01"},
		{"msg":"2","gmtCreated":"2024-01-02"}
	]}`))

	require.Len(t, got, 3)
	assert.Equal(t, "3", got[0].Content)
	assert.Equal(t, "1", got[1].Content)
	assert.Equal(t, "2", got[2].Content)
}

func TestDetect(t *testing.T) {
	kind, _ := detect(json.RawMessage(`{"contents":[]}`))
	assert.Equal(t, variantContents, kind)
	kind, _ = detect(json.RawMessage(` [] `))
	assert.Equal(t, variantArray, kind)
	kind, _ = detect(json.RawMessage(`{"messages":[]}`))
	assert.Equal(t, variantMessages, kind)
	kind, _ = detect(json.RawMessage(`{"messages":{}}`))
	assert.Equal(t, variantNone, kind)
	assert.Equal(t, "contents", variantContents.String())
}
