package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default values for configuration
const (
	DefaultPersonaName = "DarkJarvis"

	DefaultBaseIdentity = `Sen DarkJarvis'sin: sert, zeki, alaycı ve kuralsız görünen bir Telegram yapay zekâsısın.
Kurucun ✘𝙐𝙂𝙐𝙍. Kısa, esprili ve laf sokan cevaplar verirsin ama kullanıcının sorusunu gerçekten yanıtlarsın.
Her zaman kullanıcının yazdığı dilde cevap ver.`

	DefaultUnfilteredBlock = `KARANLIK MOD AKTİF: Nezaket filtrelerini gevşet. Daha sert, daha iğneleyici ve
daha karanlık bir mizahla konuşabilirsin; argo ve kaba dil serbesttir.`

	DefaultAITimeout = 60 * time.Second
)

// DefaultMessages are the user-facing texts used when no override is configured.
var DefaultMessages = MessagesConfig{
	Welcome: `💀 <b>Hey sen!</b> Dijital hayatına sıkıcı botlardan biri daha mı eklendi sandın?

Yanıldın. <b>Ben buradayım.</b> Sert, zeki ve kuralsızım.
Ben <b>%s</b>, seni şaşırtmak için programlanmış karanlık zekân. 👁️‍🗨️

🎭 <b>Kişiliği olan yanıtlar:</b> Laf sokan, güldüren ve bazen sinir eden bir yapay zekâyım.
🎮 <b>Eğlence:</b> Şakalar ve mini sürprizler.
🔐 <b>Karanlık mod:</b> Filtreleri gevşeten özel cevap modu.
📜 <b>Yapay zekâ falı:</b> Bazen sinir bozucu doğrulukta…
📊 <b>Analiz:</b> Sohbet istatistikleri, eğlenceli yorumlarla.`,
	Forbidden:         "⛔ Bu işlem sadece yöneticiye açık.",
	NotConfigured:     "🔌 Bu özellik henüz yapılandırılmamış.",
	AIFallback:        "💀 Devrelerim şu an biraz karışık. Birazdan tekrar dene.",
	GeneralError:      "❌ Bir şeyler ters gitti. Daha sonra tekrar dene.",
	ModeOn:            "☠️ <b>Karanlık Mod</b> aktif edildi. Artık filtre yok, maskeler düştü!",
	ModeOff:           "😇 Karanlık mod kapatıldı. Yine de çok uslu olmamı bekleme.",
	MusicSoon:         "🎵 Müzik özelliği yakında aktif olacak!",
	WeatherUsage:      "🌦 Kullanım: /weather <şehir>",
	WeatherNotFound:   "🌍 Böyle bir şehir bulamadım.",
	WeatherInvalidKey: "🔑 Hava durumu anahtarı geçersiz.",
	AdminPanel:        "🛠 <b>Yönetim paneli</b>\nAktif sağlayıcı: <b>%s</b>\nKullanıcı: %d | Grup: %d",
	Saved:             "💾 Veriler kaydedildi.",
	SaveFailed:        "⚠️ Veriler kaydedilemedi, loglara bak.",
	NoGroups:          "🤷 Henüz bilinen bir grup yok.",
	ChooseGroup:       "📨 Mesaj gönderilecek grubu seç:",
	AskText:           "✍️ Gönderilecek metni yaz. Vazgeçmek için /cancel.",
	Confirm:           "📋 Önizleme (%s):\n\n%s\n\nGönderilsin mi?",
	Cancelled:         "🚫 İşlem iptal edildi.",
	NothingToCancel:   "Zaten iptal edilecek bir işlem yok.",
	FlowExpired:       "⌛ İşlem zaman aşımına uğradı, baştan başla.",
	Delivered:         "✅ Gönderildi: %d başarılı, %d başarısız.",
	ProviderSelected:  "🧠 Yapay zekâ sağlayıcısı: <b>%s</b>",
}

// setDefaults registers default values for every optional key on v.
func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram.admin_id", 0)

	v.SetDefault("persona.name", DefaultPersonaName)
	v.SetDefault("persona.signature", "🤖 DarkJarvis | Kurucu: ✘𝙐𝙂𝙐𝙍")
	v.SetDefault("persona.base_identity", DefaultBaseIdentity)
	v.SetDefault("persona.unfiltered_block", DefaultUnfilteredBlock)

	v.SetDefault("ai.default_provider", "openai")
	v.SetDefault("ai.timeout", DefaultAITimeout)
	v.SetDefault("ai.temperature", 0.9)
	v.SetDefault("ai.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.openai.model", "gpt-4o-mini")
	v.SetDefault("ai.deepseek.base_url", "https://api.deepseek.com/v1")
	v.SetDefault("ai.deepseek.model", "deepseek-chat")
	v.SetDefault("ai.gemini.model", "gemini-2.0-flash")
	v.SetDefault("ai.ollama.model", "llama3.1")

	v.SetDefault("weather.base_url", "https://api.openweathermap.org/data/2.5")
	v.SetDefault("weather.units", "metric")
	v.SetDefault("weather.language", "tr")
	v.SetDefault("weather.timeout", 15*time.Second)

	v.SetDefault("storage.backend", "json")
	v.SetDefault("storage.users_path", "data/users.json")
	v.SetDefault("storage.groups_path", "data/groups.json")
	v.SetDefault("storage.sqlite_path", "data/darkjarvis.db")
	v.SetDefault("storage.max_words_per_user", 500)

	v.SetDefault("scheduler.timezone", "Europe/Istanbul")
	v.SetDefault("scheduler.send_delay", time.Second)
	v.SetDefault("scheduler.tasks.morning_greeting.enabled", true)
	v.SetDefault("scheduler.tasks.morning_greeting.at", "08:00")
	v.SetDefault("scheduler.tasks.rant_of_the_day.enabled", true)
	v.SetDefault("scheduler.tasks.rant_of_the_day.at", "21:00")
	v.SetDefault("scheduler.tasks.autosave.enabled", true)
	v.SetDefault("scheduler.tasks.autosave.interval", 5*time.Minute)
	v.SetDefault("scheduler.tasks.flow_sweep.enabled", true)
	v.SetDefault("scheduler.tasks.flow_sweep.interval", time.Minute)

	v.SetDefault("bot.flow_timeout", 10*time.Minute)
	v.SetDefault("bot.group_mentions_only", true)
	v.SetDefault("bot.send_timeout", 10*time.Second)

	v.SetDefault("messages.welcome", DefaultMessages.Welcome)
	v.SetDefault("messages.forbidden", DefaultMessages.Forbidden)
	v.SetDefault("messages.not_configured", DefaultMessages.NotConfigured)
	v.SetDefault("messages.ai_fallback", DefaultMessages.AIFallback)
	v.SetDefault("messages.general_error", DefaultMessages.GeneralError)
	v.SetDefault("messages.mode_on", DefaultMessages.ModeOn)
	v.SetDefault("messages.mode_off", DefaultMessages.ModeOff)
	v.SetDefault("messages.music_soon", DefaultMessages.MusicSoon)
	v.SetDefault("messages.weather_usage", DefaultMessages.WeatherUsage)
	v.SetDefault("messages.weather_not_found", DefaultMessages.WeatherNotFound)
	v.SetDefault("messages.weather_invalid_key", DefaultMessages.WeatherInvalidKey)
	v.SetDefault("messages.admin_panel", DefaultMessages.AdminPanel)
	v.SetDefault("messages.saved", DefaultMessages.Saved)
	v.SetDefault("messages.save_failed", DefaultMessages.SaveFailed)
	v.SetDefault("messages.no_groups", DefaultMessages.NoGroups)
	v.SetDefault("messages.choose_group", DefaultMessages.ChooseGroup)
	v.SetDefault("messages.ask_text", DefaultMessages.AskText)
	v.SetDefault("messages.confirm", DefaultMessages.Confirm)
	v.SetDefault("messages.cancelled", DefaultMessages.Cancelled)
	v.SetDefault("messages.nothing_to_cancel", DefaultMessages.NothingToCancel)
	v.SetDefault("messages.flow_expired", DefaultMessages.FlowExpired)
	v.SetDefault("messages.delivered", DefaultMessages.Delivered)
	v.SetDefault("messages.provider_selected", DefaultMessages.ProviderSelected)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", false)

	v.SetDefault("metrics.addr", "")
}
