// internal/service/cart/domain/snapshot.go
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// StoreStock 是快照中单个门店的库存条目。
type StoreStock struct {
	StoreID  string
	Quantity int
}

// InventorySnapshot 是某个 SKU 的瞬时库存视图。
// 读取即过期：仅用于本次决策，绝不跨预订调用缓存。
//
// 门店条目保持远端响应里 store_stock 对象的原始顺序，
// 选址使用 first-fit，顺序即语义，所以不能用 map 承载。
type InventorySnapshot struct {
	Stores []StoreStock
	Online int
}

// StoreQuantity 返回指定门店的库存，门店不存在时返回 0。
func (s *InventorySnapshot) StoreQuantity(storeID string) int {
	for _, st := range s.Stores {
		if st.StoreID == storeID {
			return st.Quantity
		}
	}
	return 0
}

// UnmarshalJSON 按 token 流解析 {"store_stock": {...}, "online_stock": n}，
// 保留 store_stock 对象的键序。未知字段跳过。
func (s *InventorySnapshot) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return fmt.Errorf("inventory snapshot: %w", err)
	}

	out := InventorySnapshot{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("inventory snapshot: unexpected token %v", keyTok)
		}

		switch key {
		case "store_stock":
			stores, err := decodeStoreStock(dec)
			if err != nil {
				return err
			}
			out.Stores = stores
		case "online_stock":
			qty, err := decodeInt(dec)
			if err != nil {
				return err
			}
			out.Online = qty
		default:
			if err := skipValue(dec); err != nil {
				return err
			}
		}
	}

	if _, err := dec.Token(); err != nil { // 消费收尾的 '}'
		return err
	}

	*s = out
	return nil
}

// MarshalJSON 以与远端契约相同的形状输出，并保持门店顺序。
func (s InventorySnapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"store_stock":{`)
	for i, st := range s.Stores {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(st.StoreID)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(st.Quantity))
	}
	buf.WriteString(`},"online_stock":`)
	buf.WriteString(strconv.Itoa(s.Online))
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func decodeStoreStock(dec *json.Decoder) ([]StoreStock, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok == nil { // store_stock: null
		return nil, nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("store_stock: expected object, got %v", tok)
	}

	var stores []StoreStock
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		storeID, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("store_stock: unexpected key token %v", keyTok)
		}
		qty, err := decodeInt(dec)
		if err != nil {
			return nil, err
		}
		stores = append(stores, StoreStock{StoreID: storeID, Quantity: qty})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return stores, nil
}

func decodeInt(dec *json.Decoder) (int, error) {
	tok, err := dec.Token()
	if err != nil {
		return 0, err
	}
	num, ok := tok.(json.Number)
	if !ok {
		return 0, fmt.Errorf("expected number, got %v", tok)
	}
	n, err := num.Int64()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// skipValue 消费一个完整的 JSON 值（标量或嵌套结构）。
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	d, ok := tok.(json.Delim)
	if !ok || (d != '{' && d != '[') {
		return nil
	}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}
