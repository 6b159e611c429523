package devserver

import (
	"fmt"
	"time"

	"github.com/maynagashev/glutenfree/models"
)

type seedRestaurant struct {
	name     string
	city     string
	district string
	lat, lon float64
	cuisines []string
	chain    string
	rating   float64
	price    models.PriceRange
}

var seedRestaurants = []seedRestaurant{
	{"Glutensiz Mutfak", "İstanbul", "Kadıköy", 40.9903, 29.0290, []string{"Türk", "Ev Yemekleri"}, "", 4.7, models.PriceModerate},
	{"Free Cafe Moda", "İstanbul", "Kadıköy", 40.9848, 29.0256, []string{"Kafe", "Tatlı"}, "", 4.5, models.PriceModerate},
	{"Celiac Pizza Nişantaşı", "İstanbul", "Şişli", 41.0513, 28.9940, []string{"İtalyan", "Pizza"}, "Celiac Pizza", 4.3, models.PriceExpensive},
	{"Celiac Pizza Bebek", "İstanbul", "Beşiktaş", 41.0770, 29.0436, []string{"İtalyan", "Pizza"}, "Celiac Pizza", 4.1, models.PriceExpensive},
	{"Celiac Pizza Alsancak", "İzmir", "Konak", 38.4371, 27.1428, []string{"İtalyan", "Pizza"}, "Celiac Pizza", 4.0, models.PriceExpensive},
	{"Buğdaysız Fırın", "İstanbul", "Beyoğlu", 41.0335, 28.9770, []string{"Fırın", "Tatlı"}, "", 4.8, models.PriceBudget},
	{"Sultanahmet Köftecisi GF", "İstanbul", "Fatih", 41.0082, 28.9784, []string{"Türk", "Izgara"}, "", 4.2, models.PriceBudget},
	{"Green Bowl Levent", "İstanbul", "Beşiktaş", 41.0819, 29.0107, []string{"Vegan", "Salata"}, "Green Bowl", 4.4, models.PriceModerate},
	{"Green Bowl Ataşehir", "İstanbul", "Ataşehir", 40.9923, 29.1244, []string{"Vegan", "Salata"}, "Green Bowl", 4.2, models.PriceModerate},
	{"Green Bowl Çankaya", "Ankara", "Çankaya", 39.9179, 32.8627, []string{"Vegan", "Salata"}, "Green Bowl", 4.3, models.PriceModerate},
	{"Anatolia Sofrası", "Ankara", "Çankaya", 39.9208, 32.8541, []string{"Türk", "Ev Yemekleri"}, "", 4.6, models.PriceModerate},
	{"Kızılay Glutensiz Pide", "Ankara", "Çankaya", 39.9207, 32.8541, []string{"Türk", "Pide"}, "", 3.9, models.PriceBudget},
	{"Tunalı Sushi", "Ankara", "Çankaya", 39.9036, 32.8597, []string{"Japon", "Sushi"}, "", 4.1, models.PriceLuxury},
	{"Kordon Balık Evi", "İzmir", "Konak", 38.4333, 27.1404, []string{"Deniz Ürünleri"}, "", 4.5, models.PriceExpensive},
	{"Ege Otları", "İzmir", "Karşıyaka", 38.4594, 27.1122, []string{"Ege", "Vegan"}, "", 4.4, models.PriceModerate},
	{"Boyoz Değil Börek", "İzmir", "Bornova", 38.4625, 27.2160, []string{"Fırın", "Türk"}, "", 3.8, models.PriceBudget},
	{"Kaleiçi Glutensiz", "Antalya", "Muratpaşa", 36.8841, 30.7056, []string{"Akdeniz"}, "", 4.3, models.PriceModerate},
	{"Lara Burger GF", "Antalya", "Muratpaşa", 36.8530, 30.7950, []string{"Amerikan", "Burger"}, "", 4.0, models.PriceModerate},
	{"Bursa İskender Glutensiz", "Bursa", "Osmangazi", 40.1826, 29.0665, []string{"Türk", "Kebap"}, "", 4.6, models.PriceModerate},
	{"Mavi Taco", "İstanbul", "Kadıköy", 40.9870, 29.0370, []string{"Meksika"}, "", 3.7, models.PriceModerate},
	{"Pho Saigon Cihangir", "İstanbul", "Beyoğlu", 41.0315, 28.9830, []string{"Vietnam", "Asya"}, "", 4.5, models.PriceModerate},
	{"Karaköy Pastanesi GF", "İstanbul", "Beyoğlu", 41.0220, 28.9770, []string{"Tatlı", "Kafe"}, "", 4.2, models.PriceExpensive},
	{"Hint Baharatı", "İstanbul", "Şişli", 41.0600, 28.9870, []string{"Hint"}, "", 4.1, models.PriceModerate},
	{"Kapadokya Testi Kebabı", "Nevşehir", "Ürgüp", 38.6310, 34.9120, []string{"Türk", "Kebap"}, "", 4.4, models.PriceExpensive},
	{"Trabzon Hamsi Evi", "Trabzon", "Ortahisar", 41.0050, 39.7260, []string{"Karadeniz", "Deniz Ürünleri"}, "", 4.0, models.PriceModerate},
}

var seedFeatures = []string{"Glutensiz menü", "Çölyak dostu mutfak", "Ayrı fritöz"}

var seedHours = []models.OpeningHour{
	{DayOfWeek: 0, OpenTime: "10:00", CloseTime: "20:00"},
	{DayOfWeek: 1, IsClosed: true},
	{DayOfWeek: 2, OpenTime: "09:00", CloseTime: "22:00"},
	{DayOfWeek: 3, OpenTime: "09:00", CloseTime: "22:00"},
	{DayOfWeek: 4, OpenTime: "09:00", CloseTime: "22:00"},
	{DayOfWeek: 5, OpenTime: "09:00", CloseTime: "23:00"},
	{DayOfWeek: 6, OpenTime: "10:00", CloseTime: "23:00"},
}

// seed наполняет хранилище ресторанами с меню.
func seed(repo *repository) {
	created := models.NewTimestamp(time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC))
	for i, s := range seedRestaurants {
		id := int64(i + 1)
		isChain := s.chain != ""
		rest := models.Restaurant{
			ID:           id,
			Name:         s.name,
			Address:      fmt.Sprintf("%s Mah. No:%d", s.district, i+3),
			City:         ptr(s.city),
			District:     ptr(s.district),
			Latitude:     ptr(s.lat),
			Longitude:    ptr(s.lon),
			Phone:        ptr(fmt.Sprintf("+90 212 555 %04d", 1000+i)),
			CuisineTypes: s.cuisines,
			IsChain:      ptr(isChain),
			Rating:       ptr(s.rating),
			ReviewCount:  ptr(0),
			PriceRange:   ptr(s.price),
			OpeningHours: seedHours,
			Features:     seedFeatures,
			CreatedAt:    &created,
		}
		if isChain {
			rest.ChainName = ptr(s.chain)
		}
		repo.addRestaurant(rest, seedMenu(id, s.cuisines))
	}
}

func seedMenu(restaurantID int64, cuisines []string) []models.MenuItem {
	category := "Ana Yemek"
	if len(cuisines) > 0 {
		category = cuisines[0]
	}
	return []models.MenuItem{
		{ID: restaurantID*10 + 1, Name: "Günün çorbası", Category: "Başlangıç", Price: ptr(95.0), IsGlutenFree: true, IsVegan: ptr(true)},
		{ID: restaurantID*10 + 2, Name: "Şefin tabağı", Category: category, Price: ptr(320.0), IsGlutenFree: true},
		{ID: restaurantID*10 + 3, Name: "Glutensiz brownie", Category: "Tatlı", Price: ptr(140.0), IsGlutenFree: true,
			Allergens: []string{"yumurta", "süt"}},
	}
}

func ptr[T any](v T) *T {
	return &v
}
