package api

import (
	"fmt"
	"net/http"
	"strconv"
)

// Operation определяет вид удаленной операции бэкенда.
type Operation int

const (
	OpRegister Operation = iota
	OpLogin
	OpLogout
	OpRefreshToken
	OpForgotPassword
	OpResetPassword

	OpRestaurants
	OpRestaurantDetail
	OpChainRestaurants
	OpSearchRestaurants
	OpNearbyRestaurants

	OpFavorites
	OpAddFavorite
	OpRemoveFavorite

	OpReviews
	OpAddReview
	OpUpdateReview
	OpDeleteReview

	OpProfile
	OpUpdateProfile
	OpChangePassword
	OpDeleteAccount

	operationCount // Количество операций, всегда последним
)

// QueryParam хранит пару ключ/значение строки запроса.
type QueryParam struct {
	Key   string
	Value string
}

// Endpoint описывает один вызов бэкенда: операцию и ее параметры.
// Путь, метод, требование авторизации и параметры запроса вычисляются
// из значения без побочных эффектов. Нулевое значение соответствует OpRegister.
type Endpoint struct {
	op      Operation
	id      int64
	query   string
	filters *RestaurantFilters
	page    *Page
	lat     float64
	lon     float64
	radius  float64
}

// route связывает операцию с ее HTTP-описанием.
type route struct {
	name   string
	path   func(Endpoint) string
	method string
	auth   bool
	query  func(Endpoint) []QueryParam
}

func staticPath(path string) func(Endpoint) string {
	return func(Endpoint) string { return path }
}

func idPath(format string) func(Endpoint) string {
	return func(e Endpoint) string { return fmt.Sprintf(format, e.id) }
}

// routes содержит описание всех операций. Полнота проверяется в init.
var routes = [operationCount]route{
	OpRegister:       {name: "register", path: staticPath("/auth/register"), method: http.MethodPost},
	OpLogin:          {name: "login", path: staticPath("/auth/login"), method: http.MethodPost},
	OpLogout:         {name: "logout", path: staticPath("/auth/logout"), method: http.MethodPut, auth: true},
	OpRefreshToken:   {name: "refreshToken", path: staticPath("/auth/refresh"), method: http.MethodGet, auth: true},
	OpForgotPassword: {name: "forgotPassword", path: staticPath("/auth/forgot-password"), method: http.MethodPost},
	OpResetPassword:  {name: "resetPassword", path: staticPath("/auth/reset-password"), method: http.MethodPost},

	OpRestaurants: {
		name: "restaurants", path: staticPath("/restaurants"), method: http.MethodGet, auth: true,
		query: restaurantsQuery,
	},
	OpRestaurantDetail: {name: "restaurantDetail", path: idPath("/restaurants/%d"), method: http.MethodGet, auth: true},
	OpChainRestaurants: {name: "chainRestaurants", path: staticPath("/restaurants/chains"), method: http.MethodGet, auth: true},
	OpSearchRestaurants: {
		name: "searchRestaurants", path: staticPath("/restaurants/search"), method: http.MethodGet, auth: true,
		query: func(e Endpoint) []QueryParam { return []QueryParam{{Key: "q", Value: e.query}} },
	},
	OpNearbyRestaurants: {
		name: "nearbyRestaurants", path: staticPath("/restaurants/nearby"), method: http.MethodGet, auth: true,
		query: func(e Endpoint) []QueryParam {
			return []QueryParam{
				{Key: "latitude", Value: formatFloat(e.lat)},
				{Key: "longitude", Value: formatFloat(e.lon)},
				{Key: "radius", Value: formatFloat(e.radius)},
			}
		},
	},

	OpFavorites:      {name: "favorites", path: staticPath("/favorites"), method: http.MethodGet, auth: true},
	OpAddFavorite:    {name: "addFavorite", path: idPath("/favorites/%d"), method: http.MethodPost, auth: true},
	OpRemoveFavorite: {name: "removeFavorite", path: idPath("/favorites/%d"), method: http.MethodDelete, auth: true},

	OpReviews:      {name: "reviews", path: idPath("/restaurants/%d/reviews"), method: http.MethodGet, auth: true},
	OpAddReview:    {name: "addReview", path: idPath("/restaurants/%d/reviews"), method: http.MethodPost, auth: true},
	OpUpdateReview: {name: "updateReview", path: idPath("/reviews/%d"), method: http.MethodPut, auth: true},
	OpDeleteReview: {name: "deleteReview", path: idPath("/reviews/%d"), method: http.MethodDelete, auth: true},

	OpProfile:        {name: "profile", path: staticPath("/users/profile"), method: http.MethodGet, auth: true},
	OpUpdateProfile:  {name: "updateProfile", path: staticPath("/users/profile"), method: http.MethodPut, auth: true},
	OpChangePassword: {name: "changePassword", path: staticPath("/users/change-password"), method: http.MethodPatch, auth: true},
	OpDeleteAccount:  {name: "deleteAccount", path: staticPath("/users/account"), method: http.MethodDelete, auth: true},
}

func init() {
	for op, r := range routes {
		if r.name == "" || r.path == nil || r.method == "" {
			panic(fmt.Sprintf("api: для операции %d не описан маршрут", op))
		}
	}
}

func restaurantsQuery(e Endpoint) []QueryParam {
	params := e.filters.QueryItems()
	if e.page != nil {
		params = append(params, e.page.queryItems()...)
	}
	return params
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// --- Конструкторы эндпоинтов --- //

func Register() Endpoint       { return Endpoint{op: OpRegister} }
func Login() Endpoint          { return Endpoint{op: OpLogin} }
func Logout() Endpoint         { return Endpoint{op: OpLogout} }
func RefreshToken() Endpoint   { return Endpoint{op: OpRefreshToken} }
func ForgotPassword() Endpoint { return Endpoint{op: OpForgotPassword} }
func ResetPassword() Endpoint  { return Endpoint{op: OpResetPassword} }

// Restaurants запрашивает список ресторанов. filters и page могут быть nil.
func Restaurants(filters *RestaurantFilters, page *Page) Endpoint {
	return Endpoint{op: OpRestaurants, filters: filters.clone(), page: page.clone()}
}

func RestaurantDetail(id int64) Endpoint { return Endpoint{op: OpRestaurantDetail, id: id} }
func ChainRestaurants() Endpoint         { return Endpoint{op: OpChainRestaurants} }

// SearchRestaurants ищет рестораны на сервере по строке query.
func SearchRestaurants(query string) Endpoint {
	return Endpoint{op: OpSearchRestaurants, query: query}
}

// NearbyRestaurants запрашивает рестораны в радиусе radius (км) от точки.
func NearbyRestaurants(latitude, longitude, radius float64) Endpoint {
	return Endpoint{op: OpNearbyRestaurants, lat: latitude, lon: longitude, radius: radius}
}

func Favorites() Endpoint                        { return Endpoint{op: OpFavorites} }
func AddFavorite(restaurantID int64) Endpoint    { return Endpoint{op: OpAddFavorite, id: restaurantID} }
func RemoveFavorite(restaurantID int64) Endpoint { return Endpoint{op: OpRemoveFavorite, id: restaurantID} }
func Reviews(restaurantID int64) Endpoint        { return Endpoint{op: OpReviews, id: restaurantID} }
func AddReview(restaurantID int64) Endpoint      { return Endpoint{op: OpAddReview, id: restaurantID} }
func UpdateReview(reviewID int64) Endpoint       { return Endpoint{op: OpUpdateReview, id: reviewID} }
func DeleteReview(reviewID int64) Endpoint       { return Endpoint{op: OpDeleteReview, id: reviewID} }
func Profile() Endpoint                          { return Endpoint{op: OpProfile} }
func UpdateProfile() Endpoint                    { return Endpoint{op: OpUpdateProfile} }
func ChangePassword() Endpoint                   { return Endpoint{op: OpChangePassword} }
func DeleteAccount() Endpoint                    { return Endpoint{op: OpDeleteAccount} }

// --- Производные свойства --- //

// Operation возвращает вид операции.
func (e Endpoint) Operation() Operation { return e.op }

// Name возвращает символическое имя операции для логов.
func (e Endpoint) Name() string { return e.route().name }

// Path возвращает путь с подставленными параметрами, без префикса версии API.
func (e Endpoint) Path() string { return e.route().path(e) }

// Method возвращает HTTP-метод.
func (e Endpoint) Method() string { return e.route().method }

// RequiresAuth сообщает, нужен ли Bearer-токен.
func (e Endpoint) RequiresAuth() bool { return e.route().auth }

// QueryItems возвращает параметры строки запроса в фиксированном порядке или nil.
func (e Endpoint) QueryItems() []QueryParam {
	r := e.route()
	if r.query == nil {
		return nil
	}
	params := r.query(e)
	if len(params) == 0 {
		return nil
	}
	return params
}

// String возвращает строку вида "GET /restaurants/5".
func (e Endpoint) String() string {
	return e.Method() + " " + e.Path()
}

func (e Endpoint) route() route {
	if e.op < 0 || e.op >= operationCount {
		panic(fmt.Sprintf("api: неизвестная операция %d", e.op))
	}
	return routes[e.op]
}

// RestaurantFilters задает необязательные фильтры списка ресторанов.
// nil-поле означает отсутствие ограничения, а не нулевое значение.
type RestaurantFilters struct {
	City        *string
	CuisineType *string
	MinRating   *float64
	MaxDistance *float64
	IsChain     *bool
}

// IsEmpty сообщает, что ни одно ограничение не задано.
func (f *RestaurantFilters) IsEmpty() bool {
	return f == nil ||
		(f.City == nil && f.CuisineType == nil && f.MinRating == nil && f.MaxDistance == nil && f.IsChain == nil)
}

// QueryItems возвращает параметры для заданных полей или nil, если не задано ни одно.
func (f *RestaurantFilters) QueryItems() []QueryParam {
	if f.IsEmpty() {
		return nil
	}
	var params []QueryParam
	if f.City != nil {
		params = append(params, QueryParam{Key: "city", Value: *f.City})
	}
	if f.CuisineType != nil {
		params = append(params, QueryParam{Key: "cuisine_type", Value: *f.CuisineType})
	}
	if f.MinRating != nil {
		params = append(params, QueryParam{Key: "min_rating", Value: formatFloat(*f.MinRating)})
	}
	if f.MaxDistance != nil {
		params = append(params, QueryParam{Key: "max_distance", Value: formatFloat(*f.MaxDistance)})
	}
	if f.IsChain != nil {
		params = append(params, QueryParam{Key: "is_chain", Value: strconv.FormatBool(*f.IsChain)})
	}
	return params
}

// clone копирует фильтры, чтобы эндпоинт не зависел от последующих изменений вызывающего.
func (f *RestaurantFilters) clone() *RestaurantFilters {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}

// Page задает номер (с 1) и размер страницы.
type Page struct {
	Number int
	Size   int
}

func (p *Page) clone() *Page {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func (p *Page) queryItems() []QueryParam {
	var params []QueryParam
	if p.Number > 0 {
		params = append(params, QueryParam{Key: "page", Value: strconv.Itoa(p.Number)})
	}
	if p.Size > 0 {
		params = append(params, QueryParam{Key: "page_size", Value: strconv.Itoa(p.Size)})
	}
	return params
}
