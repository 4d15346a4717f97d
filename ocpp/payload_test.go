package ocpp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoerceInt(t *testing.T) {
	t.Run("whole float", func(t *testing.T) {
		n, err := CoerceInt(float64(42), "meterStart")
		require.Nil(t, err)
		require.Equal(t, 42, n)
	})

	t.Run("fractional float", func(t *testing.T) {
		_, err := CoerceInt(float64(42.5), "meterStart")
		require.NotNil(t, err)
		require.Equal(t, FieldTypeError, err.Code)
	})

	t.Run("numeric string", func(t *testing.T) {
		n, err := CoerceInt("1200", "meterStop")
		require.Nil(t, err)
		require.Equal(t, 1200, n)
	})

	t.Run("non-numeric string", func(t *testing.T) {
		_, err := CoerceInt("twelve", "meterStop")
		require.NotNil(t, err)
		require.Equal(t, FieldTypeError, err.Code)
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, err := CoerceInt(true, "connectorId")
		require.NotNil(t, err)
		require.Equal(t, FieldTypeError, err.Code)
	})

	t.Run("absent value", func(t *testing.T) {
		_, err := CoerceInt(nil, "transactionId")
		require.NotNil(t, err)
		require.Equal(t, FieldTypeError, err.Code)
	})
}

func TestConnectorIdField(t *testing.T) {
	for _, valid := range []interface{}{float64(0), float64(1), "1"} {
		id, err := ConnectorIdField(map[string]interface{}{"connectorId": valid})
		require.Nil(t, err)
		require.Contains(t, []int{0, 1}, id)
	}

	_, err := ConnectorIdField(map[string]interface{}{"connectorId": float64(2)})
	require.NotNil(t, err)
	require.Equal(t, PropertyConstraintViolation, err.Code)
	require.Equal(t, "connectorId must be 0 or 1", err.Description)

	_, err = ConnectorIdField(map[string]interface{}{"connectorId": "one"})
	require.NotNil(t, err)
	require.Equal(t, FieldTypeError, err.Code)
}

func TestStringField(t *testing.T) {
	s, err := StringField(map[string]interface{}{"idTag": "TEST"}, "idTag")
	require.Nil(t, err)
	require.Equal(t, "TEST", s)

	_, err = StringField(map[string]interface{}{"idTag": ""}, "idTag")
	require.NotNil(t, err)
	require.Equal(t, PropertyConstraintViolation, err.Code)

	_, err = StringField(map[string]interface{}{}, "idTag")
	require.NotNil(t, err)
	require.Equal(t, PropertyConstraintViolation, err.Code)
}

func TestTimestampField(t *testing.T) {
	dt, err := TimestampField(map[string]interface{}{"timestamp": "2024-05-10T12:30:45Z"}, "timestamp")
	require.Nil(t, err)
	require.Equal(t, "2024-05-10T12:30:45Z", dt.String())

	_, err = TimestampField(map[string]interface{}{"timestamp": "2024-05-10T12:30:45+02:00"}, "timestamp")
	require.NotNil(t, err)
	require.Equal(t, FieldTypeError, err.Code)

	_, err = TimestampField(map[string]interface{}{"timestamp": float64(1715344245)}, "timestamp")
	require.NotNil(t, err)
	require.Equal(t, FieldTypeError, err.Code)
}

func TestArrayField(t *testing.T) {
	arr, err := ArrayField(map[string]interface{}{"meterValue": []interface{}{"x"}}, "meterValue")
	require.Nil(t, err)
	require.Len(t, arr, 1)

	_, err = ArrayField(map[string]interface{}{"meterValue": []interface{}{}}, "meterValue")
	require.NotNil(t, err)
	require.Equal(t, PropertyConstraintViolation, err.Code)

	_, err = ArrayField(map[string]interface{}{"meterValue": "not an array"}, "meterValue")
	require.NotNil(t, err)
}

func TestObjectField(t *testing.T) {
	obj, err := ObjectField(map[string]interface{}{"chargingProfile": map[string]interface{}{"chargingProfileId": float64(1)}}, "chargingProfile")
	require.Nil(t, err)
	require.NotNil(t, obj)

	_, err = ObjectField(map[string]interface{}{"chargingProfile": []interface{}{}}, "chargingProfile")
	require.NotNil(t, err)
	require.Equal(t, PropertyConstraintViolation, err.Code)
}
