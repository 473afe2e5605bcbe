// Package domain models laundry "dryability" for a small set of monitored
// areas: what the sky is doing right now, what it will do over the next few
// hours, and whether that adds up to a reason to bring the washing in.
//
// # Data Sources
//
// Current conditions and the 3-hour forecast come from the OpenWeather 2.5
// API (https://openweathermap.org/api). The optional hyperlocal feed is the
// Yahoo! Open Local Platform (YOLP) weather API, which reports observed and
// forecast rainfall in 5-minute steps for a single coordinate.
//
// # Provider Conventions
//
// OpenWeather current conditions:
//
//	main.temp        temperature in °C (units=metric)
//	main.humidity    relative humidity, percent
//	clouds.all       cloud cover, percent
//	wind.speed       metres per second
//	rain.1h          rainfall over the last hour, mm (object may be absent or malformed)
//	weather[0].main  condition group: Clear, Clouds, Rain, Drizzle, Snow, Thunderstorm, Mist, ...
//	dt               observation time, Unix seconds UTC
//
// OpenWeather forecast: the same fields per entry under list[], with
// rain.3h holding the 3-hour accumulation. Entries arrive roughly in order
// but are re-sorted here; entries without dt are dropped.
//
// YOLP rainfall:
//
//	Feature[0].Property.WeatherList.Weather[] = {Type, Date, Rainfall}
//	Date is "YYYYMMDDHHmm" in Japan Standard Time.
//	Rainfall is mm/h; 0 means dry.
//
// # Defaults
//
// Normalization never fails. Missing humidity becomes 50, missing cloud
// cover 0, missing temperature 0, and any condition outside the canonical
// set becomes Other (never Clear). Percentages are rounded and clamped to
// [0,100].
//
// # Scoring
//
// Score starts at 100, loses 50 above 80% humidity (20 above 60%), and
// loses 0.3 points per percent of cloud cover. Any sign of precipitation
// (current condition, nearest forecast point, or radar intensity above
// zero) forces the score to 0. Bands are strict: >80 Good, >50 Fair,
// >0 Poor, 0 Severe. A score of exactly 50 is Poor.
package domain
