package models

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Money is a currency amount. It is written to JSON as a bare decimal number
// and to MongoDB as Decimal128. Plain numeric values written by older
// versions of the app are still read.
type Money struct {
	d decimal.Decimal
}

func NewMoney(units int64) Money { return Money{d: decimal.NewFromInt(units)} }

func MoneyFromDecimal(d decimal.Decimal) Money { return Money{d: d} }

func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{d: d}, nil
}

func (m Money) Decimal() decimal.Decimal { return m.d }

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }

func (m Money) Times(qty int) Money { return Money{d: m.d.Mul(decimal.NewFromInt(int64(qty)))} }

func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }

func (m Money) IsNegative() bool { return m.d.IsNegative() }

func (m Money) String() string { return m.d.String() }

// StringFixed renders the amount with two decimal places.
func (m Money) StringFixed() string { return m.d.StringFixed(2) }

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.d.String()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	return m.d.UnmarshalJSON(b)
}

func (m Money) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d128, err := primitive.ParseDecimal128(m.d.String())
	if err != nil {
		return 0, nil, err
	}
	return bson.MarshalValue(d128)
}

func (m *Money) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Decimal128:
		d, err := decimal.NewFromString(rv.Decimal128().String())
		if err != nil {
			return err
		}
		m.d = d
	case bsontype.Double:
		m.d = decimal.NewFromFloat(rv.Double())
	case bsontype.Int32:
		m.d = decimal.NewFromInt32(rv.Int32())
	case bsontype.Int64:
		m.d = decimal.NewFromInt(rv.Int64())
	case bsontype.String:
		d, err := decimal.NewFromString(rv.StringValue())
		if err != nil {
			return err
		}
		m.d = d
	case bsontype.Null, bsontype.Undefined:
		m.d = decimal.Zero
	default:
		return fmt.Errorf("money: cannot decode bson type %s", t)
	}
	return nil
}
