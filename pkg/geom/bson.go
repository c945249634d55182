package geom

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"github.com/matzehuels/augment/pkg/errors"
)

// MarshalBSONValue stores a present box as a four-element array and an absent
// one as null, mirroring the JSON form.
func (o OptBox) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if !o.ok {
		return bson.TypeNull, nil, nil
	}
	return bson.MarshalValue(o.box.Array())
}

// UnmarshalBSONValue accepts null or a four-element number array.
func (o *OptBox) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t == bson.TypeNull || t == bson.TypeUndefined {
		*o = None
		return nil
	}
	var v []float64
	if err := (bson.RawValue{Type: t, Value: data}).Unmarshal(&v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidBox, err, "decode box")
	}
	b, err := BoxFromSlice(v)
	if err != nil {
		return err
	}
	*o = Some(b)
	return nil
}
