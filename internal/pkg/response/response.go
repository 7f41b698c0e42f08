package response

import "reflect"

// Response 统一响应结构. 出错时 Count 为 -1, Detail 为错误描述.
type Response struct {
	Count   int         `json:"count"`
	Results interface{} `json:"results"`
	Detail  string      `json:"detail"`
}

// New 包装结果. 切片或数组的 Count 为元素个数, nil 为 0, 其他为 1.
func New(results interface{}) Response {
	return Response{Count: count(results), Results: results}
}

// Fail 构造错误响应, results 可携带额外说明.
func Fail(detail string, results interface{}) Response {
	return Response{Count: -1, Results: results, Detail: detail}
}

func count(results interface{}) int {
	if results == nil {
		return 0
	}
	v := reflect.ValueOf(results)
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return v.Len()
	case reflect.Ptr, reflect.Map:
		if v.IsNil() {
			return 0
		}
	}
	return 1
}
