package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maynagashev/glutenfree/models"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{name: "Микросекунды UTC", value: "2024-05-01T12:30:45.123456Z", want: time.Date(2024, 5, 1, 12, 30, 45, 123456000, time.UTC)},
		{name: "ISO с долями и смещением", value: "2024-05-01T15:30:45.5+03:00", want: time.Date(2024, 5, 1, 12, 30, 45, 500000000, time.UTC)},
		{name: "ISO с миллисекундами", value: "2024-05-01T12:30:45.123Z", want: time.Date(2024, 5, 1, 12, 30, 45, 123000000, time.UTC)},
		{name: "Без долей секунды", value: "2024-05-01T12:30:45Z", wantErr: true},
		{name: "Только дата", value: "2024-05-01", wantErr: true},
		{name: "Мусор", value: "вчера", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := models.ParseTimestamp(tt.value)
			if tt.wantErr {
				require.ErrorIs(t, err, models.ErrInvalidTimestamp)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "получено %s", got)
		})
	}
}

func TestTimestamp_JSON(t *testing.T) {
	assert := assert.New(t)
	original := models.NewTimestamp(time.Date(2024, 5, 1, 12, 30, 45, 123456000, time.UTC))

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.JSONEq(`"2024-05-01T12:30:45.123456Z"`, string(data))

	var decoded models.Timestamp
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(original.Equal(decoded.Time))

	assert.Error(json.Unmarshal([]byte(`12345`), &decoded), "Дата должна быть строкой")
}

func TestUser(t *testing.T) {
	t.Run("Обязательные ключи", func(t *testing.T) {
		var u models.User
		err := json.Unmarshal([]byte(`{"id":1,"email":"a@b.com","first_name":"A","created_at":"2024-05-01T12:30:45.000000Z"}`), &u)
		var fieldErr *models.FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "last_name", fieldErr.Key)
	})

	t.Run("Имя и инициалы", func(t *testing.T) {
		u := models.User{FirstName: "çağla", LastName: "Öztürk"}
		assert.Equal(t, "çağla Öztürk", u.FullName())
		assert.Equal(t, "ÇÖ", u.Initials())
	})
}

func TestRestaurant_Unmarshal(t *testing.T) {
	t.Run("Дубли полей сводятся к одному", func(t *testing.T) {
		assert := assert.New(t)
		var r models.Restaurant
		require.NoError(t, json.Unmarshal([]byte(`{
			"id": 3, "name": "Fırın", "address": "Bağdat Cd. 5",
			"image_url": "long.jpg", "phone_number": "+90 212", "rating": 4.1, "average_rating": 3.0,
			"price_range": "3", "cuisine_types": ["Türk", "Fırın"]
		}`), &r))

		require.NotNil(t, r.ImageURL)
		assert.Equal("long.jpg", *r.ImageURL, "Длинное имя используется, если короткого нет")
		require.NotNil(t, r.Phone)
		assert.Equal("+90 212", *r.Phone)
		require.NotNil(t, r.Rating)
		assert.InDelta(4.1, *r.Rating, 1e-9, "Короткое имя имеет приоритет")
		require.NotNil(t, r.PriceRange)
		assert.Equal(models.PriceExpensive, *r.PriceRange)
		assert.Equal("Türk, Fırın", r.CuisineTypesString())
		assert.Equal("4.1", r.DisplayRating())
	})

	t.Run("Нет обязательного адреса", func(t *testing.T) {
		var r models.Restaurant
		assert.Error(t, json.Unmarshal([]byte(`{"id":3,"name":"Fırın"}`), &r))
	})

	t.Run("Без кухонь пустая строка", func(t *testing.T) {
		assert.Empty(t, models.Restaurant{}.CuisineTypesString())
	})
}

func TestPriceRange(t *testing.T) {
	tests := []struct {
		raw  string
		want models.PriceRange
	}{
		{raw: `1`, want: models.PriceBudget},
		{raw: `4`, want: models.PriceLuxury},
		{raw: `"2"`, want: models.PriceModerate},
		{raw: `9`, want: models.PriceModerate},
		{raw: `"pahalı"`, want: models.PriceModerate},
	}
	for _, tt := range tests {
		var p models.PriceRange
		require.NoError(t, json.Unmarshal([]byte(tt.raw), &p))
		assert.Equal(t, tt.want, p, tt.raw)
	}
	assert.Equal(t, "₺₺₺₺", models.PriceLuxury.Symbol())
}

func TestRestaurantFullAddress(t *testing.T) {
	city, district := "İstanbul", "Kadıköy"
	r := models.Restaurant{Address: "Moda Cd. 1", City: &city, District: &district}
	assert.Equal(t, "Moda Cd. 1, Kadıköy, İstanbul", r.FullAddress())
}

func TestRestaurantsResponse_PageMeta(t *testing.T) {
	var resp models.RestaurantsResponse
	require.NoError(t, json.Unmarshal([]byte(
		`{"data":[{"id":1,"name":"A","address":"x"}],"page":1,"total_pages":3}`), &resp))
	assert.Len(t, resp.Restaurants, 1)
	assert.True(t, resp.HasNextPage())

	assert.Error(t, json.Unmarshal([]byte(`{"items":[]}`), &resp), "Конверт без списка должен быть ошибкой")
}

func TestReviewsResponse(t *testing.T) {
	review := func(id int, rating float64) string {
		b, _ := json.Marshal(map[string]any{
			"id": id, "restaurant_id": 1, "user_id": 2, "user_name": "Ali", "rating": rating,
			"comment": "Güzel", "created_at": "2024-05-01T12:30:45.000000Z", "updated_at": "2024-05-01T12:30:45.000000Z",
		})
		return string(b)
	}

	t.Run("Голый массив", func(t *testing.T) {
		var resp models.ReviewsResponse
		require.NoError(t, json.Unmarshal([]byte(`[`+review(1, 5)+`,`+review(2, 4)+`]`), &resp))
		assert.Len(t, resp.Reviews, 2)
		assert.Equal(t, 2, resp.Total)
		assert.InDelta(t, 4.5, resp.AverageRating, 1e-9)
		assert.Nil(t, resp.RatingDistribution)
	})

	t.Run("Конверт", func(t *testing.T) {
		var resp models.ReviewsResponse
		require.NoError(t, json.Unmarshal([]byte(`{"reviews":[`+review(1, 5)+`],"total":10,"average_rating":3.7,`+
			`"rating_distribution":{"five_stars":5,"four_stars":0,"three_stars":0,"two_stars":0,"one_star":5}}`), &resp))
		assert.Equal(t, 10, resp.Total)
		assert.InDelta(t, 3.7, resp.AverageRating, 1e-9)
		require.NotNil(t, resp.RatingDistribution)
		assert.InDelta(t, 50.0, resp.RatingDistribution.Percentage(5), 1e-9)
	})

	t.Run("Битая сводка в конверте", func(t *testing.T) {
		var resp models.ReviewsResponse
		err := json.Unmarshal([]byte(`{"reviews":[`+review(1, 5)+`],"total":"on","average_rating":3.7}`), &resp)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reviews summary")

		err = json.Unmarshal([]byte(`{"reviews":[`+review(1, 5)+`],"total":1,"average_rating":"yüksek"}`), &resp)
		assert.Error(t, err)
	})

	t.Run("Ответ на добавление", func(t *testing.T) {
		var wrapped, bare models.AddReviewResponse
		require.NoError(t, json.Unmarshal([]byte(`{"review":`+review(7, 5)+`,"message":"ok"}`), &wrapped))
		require.NoError(t, json.Unmarshal([]byte(review(8, 3)), &bare))
		assert.Equal(t, int64(7), wrapped.Review.ID)
		require.NotNil(t, wrapped.Message)
		assert.Equal(t, int64(8), bare.Review.ID)
		assert.Nil(t, bare.Message)
	})
}

func TestRatingDistributionAdjust(t *testing.T) {
	d := models.RatingDistribution{FiveStars: 1, OneStar: 0}
	d.Adjust(4.6, 1)
	d.Adjust(3.2, 1)
	d.Adjust(0, -1)
	d.Adjust(9, -1)
	assert.Equal(t, models.RatingDistribution{FiveStars: 1, ThreeStars: 1}, d)
}

func TestOpeningHour(t *testing.T) {
	assert.Equal(t, "Pazartesi", models.OpeningHour{DayOfWeek: 1}.DayName())
	assert.Equal(t, "Kapalı", models.OpeningHour{IsClosed: true}.HoursText())
	assert.Equal(t, "09:00 - 22:00", models.OpeningHour{OpenTime: "09:00", CloseTime: "22:00"}.HoursText())
}
