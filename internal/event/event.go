package event

import "time"

// Kind тип системного события.
type Kind int

const (
	KindPowerChanged Kind = iota + 1
	KindDeviceChanged
	KindBatteryLevel
	KindSleepTransition
	KindNetworkChanged
	KindStartupGreeting
)

// PowerSource источник питания после переключения.
type PowerSource int

const (
	SourceAC PowerSource = iota + 1
	SourceBattery
)

// DeviceClass класс устройства. Батарея и USB различаются по GUID/классу
// нативного уведомления, а не по эвристике времени.
type DeviceClass int

const (
	ClassBattery DeviceClass = iota + 1
	ClassUsb
)

// DeviceAction действие с устройством.
type DeviceAction int

const (
	ActionInserted DeviceAction = iota + 1
	ActionRemoved
)

// SleepPhase фаза перехода сна.
type SleepPhase int

const (
	PhaseEntering SleepPhase = iota + 1
	PhaseResuming
)

// NetAction действие сетевого события.
type NetAction int

const (
	NetConnected NetAction = iota + 1
	NetDisconnected
)

// NetMedium тип активного сетевого интерфейса.
type NetMedium int

const (
	MediumUnknown NetMedium = iota
	MediumWiFi
	MediumEthernet
	MediumCellular
)

func (m NetMedium) String() string {
	switch m {
	case MediumWiFi:
		return "wifi"
	case MediumEthernet:
		return "ethernet"
	case MediumCellular:
		return "cellular"
	}
	return "unknown"
}

// LevelUnknown означает, что процент заряда неизвестен.
const LevelUnknown = -1

// Event универсальное нормализованное событие ОС. Поля-полезная нагрузка
// заполняются в зависимости от Kind; после конструирования событие неизменно.
// At — момент прихода нативного уведомления, проставляется адаптером.
type Event struct {
	Kind Kind
	At   time.Time

	Source PowerSource // KindPowerChanged

	Class  DeviceClass  // KindDeviceChanged
	Action DeviceAction // KindDeviceChanged
	Level  int          // KindDeviceChanged (батарея), KindBatteryLevel; LevelUnknown если нет данных

	Phase SleepPhase // KindSleepTransition

	Net    NetAction // KindNetworkChanged
	Medium NetMedium // KindNetworkChanged
	SSID   string    // KindNetworkChanged, только для WiFi и только если удалось получить

	UserName string // KindStartupGreeting
}

// NewPowerChanged событие переключения AC/батарея.
func NewPowerChanged(src PowerSource) Event {
	return Event{Kind: KindPowerChanged, At: time.Now(), Source: src}
}

// NewDeviceChanged событие подключения/отключения устройства.
func NewDeviceChanged(class DeviceClass, action DeviceAction, level int) Event {
	return Event{Kind: KindDeviceChanged, At: time.Now(), Class: class, Action: action, Level: level}
}

// NewBatteryLevel отчёт об изменении уровня заряда батареи.
func NewBatteryLevel(level int) Event {
	return Event{Kind: KindBatteryLevel, At: time.Now(), Class: ClassBattery, Level: level}
}

// NewSleepTransition событие перехода в сон или выхода из него.
func NewSleepTransition(phase SleepPhase) Event {
	return Event{Kind: KindSleepTransition, At: time.Now(), Phase: phase}
}

// NewNetworkChanged сетевое событие.
func NewNetworkChanged(act NetAction, medium NetMedium, ssid string) Event {
	return Event{Kind: KindNetworkChanged, At: time.Now(), Net: act, Medium: medium, SSID: ssid}
}

// NewStartupGreeting приветствие при старте приложения.
func NewStartupGreeting(userName string) Event {
	return Event{Kind: KindStartupGreeting, At: time.Now(), UserName: userName}
}
