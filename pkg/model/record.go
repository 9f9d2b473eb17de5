package model

// SchemaVersion — текущая версия схемы кэша метаданных.
//
// Записи с другой версией не читаются из кэша, файл анализируется заново.
const SchemaVersion = 1

// Address — разобранный ответ обратного геокодинга (OSM Nominatim).
//
// Имена JSON полей — контракт обмена с кэшем метаданных, они повторяют
// camelCase кодировку оригинального кэша.
type Address struct {
	Name          string `json:"name,omitempty"`
	Amenity       string `json:"amenity,omitempty"`
	HouseNumber   string `json:"houseNumber,omitempty"`
	Road          string `json:"road,omitempty"`
	Neighbourhood string `json:"neighbourhood,omitempty"`
	Suburb        string `json:"suburb,omitempty"`
	CityDistrict  string `json:"cityDistrict,omitempty"`
	City          string `json:"city,omitempty"`
	ISO31662Lvl4  string `json:"iso31662Lvl4,omitempty"`
	Postcode      string `json:"postcode,omitempty"`
	Country       string `json:"country,omitempty"`
	CountryCode   string `json:"countryCode,omitempty"`
}

// FileRecord — результат анализа одного физического файла.
//
// Создаётся анализатором один раз (и кэшируется по идентификатору), после
// этого неизменяем. Потребляется аккумулятором событий.
//
// Инвариант: у каждой не-skip записи установлен Date — сегментация без
// времени не определена.
type FileRecord struct {
	SchemaVersion int `json:"schemaVersion"`

	// Path — имя файла относительно входной директории. Уникальный
	// идентификатор записи.
	Path string `json:"path"`

	Date        Timestamp `json:"date"`
	CameraModel string    `json:"cameraModel,omitempty"`

	// Lat/Lon — GPS координаты; либо обе присутствуют, либо обе nil.
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`

	Address *Address `json:"address"`

	// Keywords — упорядоченно-уникальные токены из caption (без стоп-слов).
	Keywords       []string `json:"keywords"`
	KeywordsGerman []string `json:"keywordsGerman"`

	Caption       string `json:"caption"`
	CaptionGerman string `json:"captionGerman"`

	// Skip — файл не прошёл фильтр расширений. Не сериализуется:
	// skip-записи в кэш и в сегментацию не попадают.
	Skip bool `json:"-"`
}

// HasLocation сообщает, есть ли у записи обе GPS координаты.
func (r *FileRecord) HasLocation() bool {
	return r.Lat != nil && r.Lon != nil
}

// AddressName возвращает имя места или "" если адрес не разрешён.
func (r *FileRecord) AddressName() string {
	if r.Address == nil {
		return ""
	}
	return r.Address.Name
}
