package telephony

import (
	"encoding/xml"
)

// TwiML 通话脚本，序列化成 Twilio 的 <Response> 文档

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

type twimlResponse struct {
	XMLName xml.Name      `xml:"Response"`
	Verbs   []interface{} `xml:",any"`
}

type twimlSay struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr,omitempty"`
	Text    string   `xml:",chardata"`
}

type twimlGather struct {
	XMLName   xml.Name `xml:"Gather"`
	Input     string   `xml:"input,attr"`
	NumDigits int      `xml:"numDigits,attr"`
	Action    string   `xml:"action,attr"`
	Method    string   `xml:"method,attr"`
	Timeout   int      `xml:"timeout,attr"`
	Say       twimlSay `xml:"Say"`
}

// WakeupScriptOptions 叫醒通话脚本参数
type WakeupScriptOptions struct {
	Snoozed       bool   // 贪睡重拨切换问候语
	WeatherLine   string // 天气播报，空则跳过
	CustomMessage string // 用户自定义消息
	ActionURL     string // 按键回调地址
}

// BuildWakeupScript 生成叫醒通话的 TwiML
func BuildWakeupScript(opts WakeupScriptOptions) (string, error) {
	greeting := "Good morning! This is your wake-up call. It's time to start your day!"
	if opts.Snoozed {
		greeting = "Rise and shine! This is your snoozed wake-up call. Time to get up!"
	}

	verbs := []interface{}{
		twimlSay{Voice: "alice", Text: greeting},
	}

	if opts.WeatherLine != "" {
		verbs = append(verbs, twimlSay{Voice: "alice", Text: opts.WeatherLine})
	}

	if opts.CustomMessage != "" {
		verbs = append(verbs, twimlSay{Voice: "alice", Text: opts.CustomMessage})
	}

	verbs = append(verbs, twimlGather{
		Input:     "dtmf speech",
		NumDigits: 1,
		Action:    opts.ActionURL,
		Method:    "POST",
		Timeout:   10,
		Say: twimlSay{
			Voice: "alice",
			Text:  "Press 1 to snooze for 10 minutes, or press 2 to cancel all future wake-up calls.",
		},
	})

	// 无按键时的收尾
	verbs = append(verbs, twimlSay{Voice: "alice", Text: "Have a wonderful day!"})

	return marshalResponse(verbs)
}

// BuildSayResponse 生成只播报一句话的 TwiML，用于按键后的回应
func BuildSayResponse(text string) (string, error) {
	return marshalResponse([]interface{}{
		twimlSay{Voice: "alice", Text: text},
	})
}

func marshalResponse(verbs []interface{}) (string, error) {
	doc := twimlResponse{Verbs: verbs}
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return xmlHeader + string(out), nil
}
